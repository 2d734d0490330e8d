package parseinput

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cwbudde/chebsolve/box"
	"github.com/cwbudde/chebsolve/fn"
)

// Result is everything an input file describes: the general solve
// parameters, the search box, and the ordered system of functions to find
// common roots of.
type Result struct {
	Params   GeneralParameters
	Box      box.Box
	Funcs    []fn.Function
	VarNames []string
}

// section names the three blocks an input file's statements fall into.
type section int

const (
	sectionTop section = iota
	sectionParameters
	sectionInterval
	sectionFunctions
)

// Parse reads a whole input file and returns the parsed GeneralParameters,
// Box and system of Functions. The grammar (spec.md section 6) is a flat
// sequence of ';'-terminated statements, case- and whitespace-insensitive,
// grouped into PARAMETERS;/..;PARAMETERS_END;, INTERVAL;/..;INTERVAL_END;
// and FUNCTIONS;/..;FUNCTIONS_END; blocks, closed by a trailing END;.
func Parse(r io.Reader) (*Result, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("parseinput: reading input: %w", err)
	}
	stmts := splitStatements(string(raw))

	res := &Result{Params: DefaultGeneralParameters()}
	var lo, hi []float64
	var varNames, outputNames []string
	var defOrder []string
	defs := make(map[string]string)

	sec := sectionTop
	for _, stmt := range stmts {
		word := firstWord(stmt)
		switch {
		case strings.EqualFold(word, "PARAMETERS") && sec == sectionTop:
			sec = sectionParameters
			continue
		case strings.EqualFold(word, "PARAMETERS_END") && sec == sectionParameters:
			sec = sectionTop
			continue
		case strings.EqualFold(word, "INTERVAL") && sec == sectionTop:
			sec = sectionInterval
			continue
		case strings.EqualFold(word, "INTERVAL_END") && sec == sectionInterval:
			sec = sectionTop
			continue
		case strings.EqualFold(word, "FUNCTIONS") && sec == sectionTop:
			sec = sectionFunctions
			continue
		case strings.EqualFold(word, "FUNCTIONS_END") && sec == sectionFunctions:
			sec = sectionTop
			continue
		case strings.EqualFold(stmt, "END"):
			continue
		}

		switch sec {
		case sectionParameters:
			if err := applyParameter(&res.Params, stmt); err != nil {
				return nil, err
			}
		case sectionInterval:
			axisLo, axisHi, err := parseIntervalStatement(stmt)
			if err != nil {
				return nil, err
			}
			lo = append(lo, axisLo)
			hi = append(hi, axisHi)
		case sectionFunctions:
			switch {
			case strings.EqualFold(word, "function"):
				outputNames = splitNames(stmt[len(word):])
			case strings.EqualFold(word, "variable_group"):
				varNames = splitNames(stmt[len(word):])
			default:
				name, expr, err := parseDefinition(stmt)
				if err != nil {
					return nil, err
				}
				key := strings.ToLower(name)
				if _, dup := defs[key]; !dup {
					defOrder = append(defOrder, key)
				}
				defs[key] = expr
			}
		default:
			return nil, fmt.Errorf("parseinput: unexpected statement outside any block: %q", stmt)
		}
	}

	if len(varNames) == 0 {
		return nil, fmt.Errorf("parseinput: FUNCTIONS block never declared a variable_group")
	}
	if len(outputNames) == 0 {
		return nil, fmt.Errorf("parseinput: FUNCTIONS block never declared a function list")
	}
	if len(lo) != len(varNames) {
		return nil, fmt.Errorf("parseinput: INTERVAL declares %d axes, variable_group declares %d", len(lo), len(varNames))
	}

	b, err := box.New(lo, hi)
	if err != nil {
		return nil, fmt.Errorf("parseinput: building box: %w", err)
	}
	res.Box = b
	res.VarNames = varNames

	env := fn.NewEnv(varNames)
	for _, key := range defOrder {
		if err := env.Define(key, defs[key]); err != nil {
			return nil, fmt.Errorf("parseinput: %w", err)
		}
	}
	res.Funcs = make([]fn.Function, len(outputNames))
	for i, name := range outputNames {
		expr, ok := defs[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("parseinput: function list names %q, which was never defined", name)
		}
		f, err := env.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("parseinput: compiling %q: %w", name, err)
		}
		res.Funcs[i] = f
	}
	return res, nil
}

// splitStatements breaks raw input into trimmed, whitespace-collapsed,
// non-empty ';'-terminated statements. Statements may span physical lines.
func splitStatements(raw string) []string {
	parts := strings.Split(raw, ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		p = collapseWhitespace(p)
		if p != "" {
			stmts = append(stmts, p)
		}
	}
	return stmts
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func firstWord(stmt string) string {
	if i := strings.IndexAny(stmt, " ="); i >= 0 {
		return stmt[:i]
	}
	return stmt
}

func splitNames(rest string) []string {
	rest = strings.TrimPrefix(strings.TrimSpace(rest), "=")
	rest = strings.TrimSpace(rest)
	fields := strings.Split(rest, ",")
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			names = append(names, f)
		}
	}
	return names
}

func parseDefinition(stmt string) (name, expr string, err error) {
	i := strings.Index(stmt, "=")
	if i < 0 {
		return "", "", fmt.Errorf("parseinput: expected <name>=<expr> in FUNCTIONS block, got %q", stmt)
	}
	name = strings.TrimSpace(stmt[:i])
	expr = strings.TrimSpace(stmt[i+1:])
	if name == "" || expr == "" {
		return "", "", fmt.Errorf("parseinput: malformed definition %q", stmt)
	}
	return name, expr, nil
}

func parseIntervalStatement(stmt string) (lo, hi float64, err error) {
	stmt = strings.TrimSpace(stmt)
	if !strings.HasPrefix(stmt, "[") || !strings.HasSuffix(stmt, "]") {
		return 0, 0, fmt.Errorf("parseinput: expected [lo,hi] in INTERVAL block, got %q", stmt)
	}
	body := stmt[1 : len(stmt)-1]
	fields := strings.Split(body, ",")
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("parseinput: expected [lo,hi], got %q", stmt)
	}
	lo, err = strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parseinput: parsing interval lower bound %q: %w", stmt, err)
	}
	hi, err = strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parseinput: parsing interval upper bound %q: %w", stmt, err)
	}
	return lo, hi, nil
}

func applyParameter(p *GeneralParameters, stmt string) error {
	name, value, err := parseDefinition(stmt)
	if err != nil {
		return err
	}
	key := strings.ToLower(name)

	asInt := func(dst *int) error {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("parseinput: parameter %q: %w", name, err)
		}
		*dst = n
		return nil
	}
	asFloat := func(dst *float64) error {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("parseinput: parameter %q: %w", name, err)
		}
		*dst = f
		return nil
	}
	asBool := func(dst *bool) error {
		b, ok := parseBool(value)
		if !ok {
			return fmt.Errorf("parseinput: parameter %q: %q is not a boolean", name, value)
		}
		*dst = b
		return nil
	}

	switch key {
	case "numthreads":
		return asInt(&p.NumThreads)
	case "relapproxtol":
		return asFloat(&p.RelApproxTol)
	case "absapproxtol":
		return asFloat(&p.AbsApproxTol)
	case "targettol":
		return asFloat(&p.TargetTol)
	case "goodzerosfactor":
		return asFloat(&p.GoodZerosFactor)
	case "mingoodzerostol":
		return asFloat(&p.MinGoodZerosTol)
	case "approximationdegree":
		return asInt(&p.ApproximationDegree)
	case "maxlevel":
		return asInt(&p.MaxLevel)
	case "trackintervals":
		return asBool(&p.TrackIntervals)
	case "trackprogress":
		return asBool(&p.TrackProgress)
	case "usetimer":
		return asBool(&p.UseTimer)
	default:
		return fmt.Errorf("parseinput: unknown parameter %q", name)
	}
}
