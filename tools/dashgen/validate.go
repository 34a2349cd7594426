package main

import (
	"encoding/json"
	"fmt"

	"github.com/prometheus/prometheus/promql/parser"
)

// Result accumulates validation problems. Errors fail the run; warnings are
// reported but tolerated.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether validation passed.
func (r *Result) Ok() bool {
	return len(r.Errors) == 0
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// ValidateExprs parses each PromQL expression and checks every referenced
// metric against known. Histogram suffixes (_bucket, _sum, _count) resolve to
// their base metric.
func ValidateExprs(exprs []string, known map[string]bool) *Result {
	result := &Result{}
	for _, expr := range exprs {
		node, err := parser.ParseExpr(expr)
		if err != nil {
			result.errorf("invalid PromQL %q: %v", expr, err)
			continue
		}
		//nolint:errcheck // the inspector never returns an error
		parser.Inspect(node, func(n parser.Node, _ []parser.Node) error {
			vs, ok := n.(*parser.VectorSelector)
			if !ok || vs.Name == "" {
				return nil
			}
			if !known[baseMetricName(vs.Name)] {
				result.errorf("unknown metric %q in %q", vs.Name, expr)
			}
			return nil
		})
	}
	return result
}

// baseMetricName strips histogram sample suffixes.
func baseMetricName(name string) string {
	for _, suffix := range []string{"_bucket", "_sum", "_count"} {
		if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
			base := name[:len(name)-len(suffix)]
			// Only strip when the base is a known histogram; counters
			// legitimately end in _count otherwise.
			if KnownMetrics[base] {
				return base
			}
		}
	}
	return name
}

// CollectDashboardExprs walks marshaled dashboard JSON and returns every
// "expr" string it finds.
func CollectDashboardExprs(dashJSON []byte) ([]string, error) {
	var root any
	if err := json.Unmarshal(dashJSON, &root); err != nil {
		return nil, fmt.Errorf("parsing dashboard JSON: %w", err)
	}
	var exprs []string
	collectExprs(root, &exprs)
	return exprs, nil
}

func collectExprs(v any, out *[]string) {
	switch node := v.(type) {
	case map[string]any:
		for key, val := range node {
			if key == "expr" {
				if expr, ok := val.(string); ok && expr != "" {
					*out = append(*out, expr)
				}
				continue
			}
			collectExprs(val, out)
		}
	case []any:
		for _, item := range node {
			collectExprs(item, out)
		}
	}
}
