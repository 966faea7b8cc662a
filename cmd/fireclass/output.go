package main

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/fireclass/pkg/core"
)

type document struct {
	ID   string         `json:"id" yaml:"id"`
	Data map[string]any `json:"data" yaml:"data"`
}

func toDocument(s *core.Snapshot) document {
	return document{ID: s.ID, Data: s.Data}
}

func checkFormat(format string) error {
	switch format {
	case "json", "yaml":
		return nil
	}
	return fmt.Errorf("unsupported format %q (use json or yaml)", format)
}

func write(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}
