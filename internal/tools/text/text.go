// Package text registers string tools.
package text

import (
	"context"
	"slices"

	"github.com/wagiedev/wstools-go/internal/tool"
)

// Register adds reverse and is_palindrome to reg.
func Register(reg *tool.Registry) error {
	for _, d := range []*tool.Descriptor{
		tool.MustNew("reverse", "Reverses a string",
			[]tool.Param{tool.Required("text", tool.TypeString)},
			func(_ context.Context, args tool.Args) (any, error) {
				return Reverse(args.String("text")), nil
			},
		),
		tool.MustNew("is_palindrome", "Reports whether a string reads the same backwards",
			[]tool.Param{tool.Required("text", tool.TypeString)},
			func(_ context.Context, args tool.Args) (any, error) {
				return IsPalindrome(args.String("text")), nil
			},
		),
	} {
		if err := reg.Register(d); err != nil {
			return err
		}
	}

	return nil
}

// Reverse reverses s by code point.
func Reverse(s string) string {
	runes := []rune(s)
	slices.Reverse(runes)

	return string(runes)
}

// IsPalindrome compares s with its reverse, case and spacing included.
func IsPalindrome(s string) bool {
	return s == Reverse(s)
}
