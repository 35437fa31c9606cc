/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package banner prints the colorized one-time startup banner, gated by
// --quiet.
package banner

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Info is the set of facts shown on the startup banner.
type Info struct {
	Version        string
	Addr           string
	MaxSize        string
	InitialPolicy  string
	MaxConnections int64
}

var (
	title = color.New(color.FgCyan, color.Bold)
	label = color.New(color.FgWhite)
	value = color.New(color.FgGreen)
)

// Print writes the banner to w unless quiet is set.
func Print(w io.Writer, quiet bool, info Info) {
	if quiet {
		return
	}

	_, _ = title.Fprintf(w, "papercache %s\n", info.Version)
	printField(w, "listening", info.Addr)
	printField(w, "max_size", info.MaxSize)
	printField(w, "policy", info.InitialPolicy)
	printField(w, "max_connections", fmt.Sprintf("%d", info.MaxConnections))
}

func printField(w io.Writer, name, v string) {
	_, _ = label.Fprintf(w, "  %-16s", name)
	_, _ = value.Fprintln(w, v)
}
