package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	denicek "github.com/krsion/MyDenicek-sub001"
	"github.com/krsion/MyDenicek-sub001/dom"
	"github.com/krsion/MyDenicek-sub001/render"
	"github.com/krsion/MyDenicek-sub001/sync"
)

func renderDoc(cfg *RenderConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Render.Parse(cc, args)
	if err != nil {
		cfg.Render.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: render requires a snapshot file", cli.ErrUsage)
	}
	doc, err := loadDoc(args[0])
	if err != nil {
		return err
	}
	root := doc.Root()
	if cfg.Node != "" {
		root = dom.NodeID(cfg.Node)
	}
	out, err := render.HTML(doc.Index(), root)
	if err != nil {
		return err
	}
	fmt.Fprintln(cc.Out, out)
	return nil
}

func loadDoc(path string) (*denicek.Document, error) {
	ops, err := sync.LoadSnapshot(path)
	if err != nil {
		return nil, err
	}
	doc := denicek.New("", dom.Element("body"))
	doc.Merge(ops)
	return doc, nil
}
