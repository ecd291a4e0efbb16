// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"regexp"
	"strings"
)

var trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)

// stripFences removes markdown code fences some models wrap around JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// repairJSON attempts to fix common JSON formatting issues from LLM responses:
// trailing commas before a closing brace or bracket, and missing opening
// quotes before object keys (`, type":` becomes `, "type":`).
func repairJSON(s string) string {
	s = trailingCommaPattern.ReplaceAllString(s, "$1")

	result := []rune(s)
	fixed := make([]rune, 0, len(result)+16)

	i := 0
	for i < len(result) {
		ch := result[i]
		if ch != '{' && ch != ',' {
			fixed = append(fixed, ch)
			i++
			continue
		}

		fixed = append(fixed, ch)
		i++

		for i < len(result) && (result[i] == ' ' || result[i] == '\n' || result[i] == '\t') {
			fixed = append(fixed, result[i])
			i++
		}

		// An identifier here that runs straight into `":` lost its opening quote.
		if i < len(result) && result[i] != '"' && isIdentRune(result[i]) {
			keyStart := i
			for i < len(result) && (isIdentRune(result[i]) || result[i] == ' ') {
				i++
			}
			if i+1 < len(result) && result[i] == '"' && result[i+1] == ':' {
				fixed = append(fixed, '"')
				fixed = append(fixed, result[keyStart:i]...)
				continue
			}
			fixed = append(fixed, result[keyStart:i]...)
		}
	}

	return string(fixed)
}

func isIdentRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}
