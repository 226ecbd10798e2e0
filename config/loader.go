// Package config loads declarative firewall configuration from .hcl files.
//
// A directory of files is merged into a single configuration:
//
//   project = "my-project"
//
//   firewall "allow-ssh" {
//     network       = default_network
//     source_ranges = ["0.0.0.0/0"]
//
//     allow {
//       protocol = "tcp"
//       ports    = ["22"]
//     }
//   }
//
// The default_network variable is available in expressions and resolves to
// the project's default network.
package config

import (
	"fmt"
	"io"
	"io/ioutil"
	"path/filepath"
	"sort"

	"github.com/fwctl/fwctl/compute"
	"github.com/hashicorp/hcl2/gohcl"
	"github.com/hashicorp/hcl2/hcl"
	"github.com/hashicorp/hcl2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/crypto/ssh/terminal"
)

// A Loader loads configuration files from .hcl files on disk.
//
// The zero value is ready to load files.
type Loader struct {
	parser *hclparse.Parser
}

// Load loads and decodes all .hcl files directly in the given directory.
//
// Files are merged in lexical filename order before decoding, so a rule may
// reference the project attribute declared in another file.
func (l *Loader) Load(dir string) (*Root, hcl.Diagnostics) {
	if l.parser == nil {
		l.parser = hclparse.NewParser()
	}

	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Cannot read configuration directory",
			Detail:   err.Error(),
		}}
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".hcl" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "No configuration files",
			Detail:   fmt.Sprintf("No .hcl files found in %s.", dir),
		}}
	}

	var diags hcl.Diagnostics
	files := make([]*hcl.File, 0, len(names))
	for _, name := range names {
		f, moreDiags := l.parser.ParseHCLFile(filepath.Join(dir, name))
		diags = append(diags, moreDiags...)
		if f != nil {
			files = append(files, f)
		}
	}
	if diags.HasErrors() {
		return nil, diags
	}

	var root Root
	moreDiags := gohcl.DecodeBody(hcl.MergeFiles(files), evalContext(), &root)
	diags = append(diags, moreDiags...)
	if diags.HasErrors() {
		return nil, diags
	}
	return &root, diags
}

// evalContext returns the expression scope configuration files are decoded
// in.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"default_network": cty.StringVal(compute.DefaultNetwork),
		},
	}
}

// WriteDiagnostics writes diagnostics as a human readable string to w. It
// should only be used for diagnostics that originate from files loaded by
// this Loader.
//
// If a TTY is attached, the output will be colorized and wrap at the
// terminal width. Otherwise, wrap occurs at 78 characters and output won't
// contain ANSI escape characters.
func (l *Loader) WriteDiagnostics(w io.Writer, diags hcl.Diagnostics) {
	var files map[string]*hcl.File
	if l.parser != nil {
		files = l.parser.Files()
	}
	cols, _, err := terminal.GetSize(0)
	if err != nil {
		cols = 78
	}
	color := terminal.IsTerminal(0)
	wr := hcl.NewDiagnosticTextWriter(w, files, uint(cols), color)
	if err := wr.WriteDiagnostics(diags); err != nil {
		fmt.Fprintln(w, err)
	}
}
