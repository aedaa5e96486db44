package eval

// builtins maps well-known formula operation names to the expressions that
// implement them. Anything not listed here is compiled as an expression
// itself, so "len(args) > 2 ? 'many' : 'few'" is a valid operation string.
var builtins = map[string]string{
	"sum":     `sum(args)`,
	"product": `reduce(args, #acc * #, 1)`,
	"count":   `len(args)`,
	"min":     `min(args)`,
	"max":     `max(args)`,
	"mean":    `mean(args)`,
	"concat":  `join(map(args, string(#)), "")`,
	"join":    `join(map(args, string(#)), " ")`,
	"upper":   `upper(join(map(args, string(#)), ""))`,
	"lower":   `lower(join(map(args, string(#)), ""))`,
	"first":   `args[0]`,
	"last":    `args[-1]`,
	"reverse": `reverse(args)`,
}
