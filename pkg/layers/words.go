/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package layers

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var (
	tokenSplit    = regexp.MustCompile(`[\s\[\]{}()]+`)
	subtokenSplit = regexp.MustCompile(`[;,]`)
	hexToken      = regexp.MustCompile(`^(0[xX])?[0-9a-fA-F]+$`)
)

// ErrParseWord reports a token of a word dump that is not a 32-bit word
type ErrParseWord struct {
	Line  int
	Token string
	Err   error
}

func (e ErrParseWord) Error() string {
	return fmt.Sprintf("line %d: cannot parse token '%s': %s", e.Line, e.Token, e.Err)
}

func (e ErrParseWord) Unwrap() error {
	return e.Err
}

// ParseWord parses one token of a word dump. Tokens made of hex digits are
// hex whether or not they carry the 0x prefix, so "4097" is 0x4097.
func ParseWord(tok string) (uint32, error) {
	tok = strings.TrimRight(strings.TrimSpace(tok), ",")
	if tok == "" {
		return 0, fmt.Errorf("empty token")
	}
	var (
		v   uint64
		err error
	)
	if hexToken.MatchString(tok) {
		digits := tok
		if len(digits) > 1 && (digits[1] == 'x' || digits[1] == 'X') {
			digits = digits[2:]
		}
		v, err = strconv.ParseUint(digits, 16, 64)
	} else {
		v, err = strconv.ParseUint(tok, 10, 64)
	}
	if err != nil {
		return 0, err
	}
	if v > 0xffffffff {
		return 0, fmt.Errorf("out of u32 range: %d", v)
	}
	return uint32(v), nil
}

// ParseWords reads a text dump of FIFO words. Blank lines and lines starting
// with # are ignored. A line may hold several words separated by whitespace,
// commas or semicolons, and brackets from C array dumps are dropped.
func ParseWords(r io.Reader) ([]uint32, error) {
	var words []uint32
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		s := strings.TrimSpace(scanner.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		for _, tok := range tokenSplit.Split(s, -1) {
			for _, sub := range subtokenSplit.Split(tok, -1) {
				sub = strings.TrimSpace(sub)
				if sub == "" {
					continue
				}
				w, err := ParseWord(sub)
				if err != nil {
					return nil, ErrParseWord{Line: line, Token: sub, Err: err}
				}
				words = append(words, w)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}
