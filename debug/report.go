/*
 * Copyright 2026 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package debug

import (
	"fmt"
	"runtime"
)

// Module describes the software module a report originates from.
type Module struct {
	Name   string
	Desc   string
	Author string
	File   string
}

// Report is the structured descriptor handed to a Reporter when a contract is violated.
type Report struct {
	Module *Module

	// Func, File and Line locate the failed check.
	Func string
	File string
	Line int

	// Expr is the condition that did not hold, e.g. "size > 0".
	Expr string
	Kind Kind
}

// NewReport creates a Report for a failed expr, recording the location of the caller.
// skip is the number of extra stack frames to skip above the caller of NewReport.
func NewReport(mod *Module, kind Kind, expr string, skip int) *Report {
	r := &Report{Module: mod, Kind: kind, Expr: expr}
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return r
	}
	r.File = file
	r.Line = line
	if fn := runtime.FuncForPC(pc); fn != nil {
		r.Func = fn.Name()
	}
	return r
}

// Error implements error, so a Report can be used as a panic value and inspected with errors.As.
func (r *Report) Error() string {
	mod := "unknown"
	if r.Module != nil {
		mod = r.Module.Name
	}
	return fmt.Sprintf("%s: %s: %s (%s) at %s:%d in %s",
		mod, r.Kind, r.Kind.Message(), r.Expr, r.File, r.Line, r.Func)
}
