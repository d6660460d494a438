package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/mmm/container"
)

// parseEffects parses a comma-separated list of hex tag bytes such as
// "01,05,ff". An empty list yields no side effects.
func parseEffects(list string) ([]container.SideEffect, error) {
	var out []container.SideEffect
	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		field = strings.TrimPrefix(strings.ToLower(field), "0x")
		n, err := strconv.ParseUint(field, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid side-effect tag %q", field)
		}
		e, ok := container.ParseSideEffect(byte(n))
		if !ok {
			return nil, fmt.Errorf("unknown side-effect tag 0x%02x", n)
		}
		out = append(out, e)
	}
	return out, nil
}
