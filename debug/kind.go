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

// Kind categorizes a contract violation.
type Kind uint8

const (
	// KindInvalidObject means the object was never initialized or has been corrupted.
	KindInvalidObject Kind = iota + 1
	// KindResourceExhausted means a requested amount exceeds what is left.
	KindResourceExhausted
	// KindInvalidArgument means an argument is nil, zero or otherwise out of contract.
	KindInvalidArgument
	// KindUsage means an object or method is used in a way it does not support.
	KindUsage
)

var kindMessages = [...]string{
	KindInvalidObject:     "Object is not valid.",
	KindResourceExhausted: "Value is out of valid range.",
	KindInvalidArgument:   "Argument is not valid.",
	KindUsage:             "Object/method usage failure.",
}

var kindNames = [...]string{
	KindInvalidObject:     "invalid object",
	KindResourceExhausted: "resource exhausted",
	KindInvalidArgument:   "invalid argument",
	KindUsage:             "usage",
}

// String returns the short name of the kind, e.g. "resource exhausted".
func (k Kind) String() string {
	if k == 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Message returns the fixed human readable message attached to reports of this kind.
func (k Kind) Message() string {
	if k == 0 || int(k) >= len(kindMessages) {
		return "Unknown failure."
	}
	return kindMessages[k]
}
