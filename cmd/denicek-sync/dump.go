package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"

	denicek "github.com/krsion/MyDenicek-sub001"
	"github.com/krsion/MyDenicek-sub001/dom"
)

func dump(cfg *DumpConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Dump.Parse(cc, args)
	if err != nil {
		cfg.Dump.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: dump requires a snapshot file", cli.ErrUsage)
	}
	doc, err := loadDoc(args[0])
	if err != nil {
		return err
	}
	return dumpTree(cfg.MainConfig, cc.Out, doc)
}

func dumpTree(cfg *MainConfig, w io.Writer, doc *denicek.Document) error {
	tagC := color.New(color.FgCyan)
	idC := color.New(color.FgYellow)
	textC := color.New(color.FgGreen)
	for _, c := range []*color.Color{tagC, idC, textC} {
		if cfg.colorize(w) {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return doc.WalkDepthFirst(func(id dom.NodeID, depth int) (bool, error) {
		data, err := doc.GetNode(id)
		if err != nil {
			return false, err
		}
		indent := strings.Repeat("  ", depth)
		switch data.Kind {
		case dom.ElementKind:
			fmt.Fprintf(w, "%s%s %s", indent, tagC.Sprintf("<%s>", data.Tag), idC.Sprint(id))
			keys := make([]string, 0, len(data.Attrs))
			for k := range data.Attrs {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(w, " %s=%v", k, data.Attrs[k])
			}
			fmt.Fprintln(w)
		case dom.ValueKind:
			fmt.Fprintf(w, "%s%s %s\n", indent, textC.Sprintf("%q", data.Text), idC.Sprint(id))
		case dom.FormulaKind:
			fmt.Fprintf(w, "%s=%s %s\n", indent, data.Op, idC.Sprint(id))
		case dom.ActionKind:
			fmt.Fprintf(w, "%s[%s -> %s] %s\n", indent, data.Label, data.Target, idC.Sprint(id))
		case dom.RefKind:
			fmt.Fprintf(w, "%s&%s %s\n", indent, data.Target, idC.Sprint(id))
		}
		return true, nil
	})
}
