package importer

import (
	"strconv"
	"strings"

	"github.com/piwi3910/casemk/internal/errors"
	"github.com/piwi3910/casemk/internal/model"
)

// splitSizes splits "30x20x15" (any case, spaces ignored) into numbers.
func splitSizes(s string) ([]float64, error) {
	clean := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "")
	if clean == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty size")
	}
	parts := strings.Split(clean, "x")
	vals := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "invalid number %q in %q", p, s)
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// ParseDimension parses "WxLxH" or "WxL". A missing height defaults to
// the width.
func ParseDimension(s string) (model.Dimension, error) {
	vals, err := splitSizes(s)
	if err != nil {
		return model.Dimension{}, err
	}
	if len(vals) < 2 || len(vals) > 3 {
		return model.Dimension{}, errors.New(errors.ErrCodeInvalidInput, "expected format WxLxH or WxL, got %q", s)
	}
	if len(vals) == 2 {
		vals = append(vals, vals[0])
	}
	d := model.Dimension{Width: vals[0], Length: vals[1], Height: vals[2]}
	if err := d.Validate(); err != nil {
		return model.Dimension{}, err
	}
	return d, nil
}

// ParseFootprint parses "WxL" into a positive width and length.
func ParseFootprint(s string) (w, l float64, err error) {
	vals, err := splitSizes(s)
	if err != nil {
		return 0, 0, err
	}
	if len(vals) != 2 {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "expected format WxL, got %q", s)
	}
	if vals[0] <= 0 || vals[1] <= 0 {
		return 0, 0, errors.New(errors.ErrCodeInvalidDimension, "footprint must be positive, got %q", s)
	}
	return vals[0], vals[1], nil
}

// ParseItem parses one item: "WxLxH", "WxLxH:count" or
// "WxLxH:count(label)". The count defaults to 1.
func ParseItem(s string) (model.Item, error) {
	s = strings.TrimSpace(s)
	dims, count, label := s, 1, ""

	if i := strings.LastIndex(s, ":"); i >= 0 {
		dims = s[:i]
		rest := strings.TrimSpace(s[i+1:])
		if open := strings.Index(rest, "("); open >= 0 {
			label = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest[open+1:]), ")"))
			rest = strings.TrimSpace(rest[:open])
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			return model.Item{}, errors.New(errors.ErrCodeInvalidInput, "invalid count %q in %q", rest, s)
		}
		count = n
	}

	d, err := ParseDimension(dims)
	if err != nil {
		return model.Item{}, err
	}
	it := model.NewItem(label, d, count)
	if err := it.Validate(); err != nil {
		return model.Item{}, err
	}
	return it, nil
}

// ParseItems parses a comma separated list such as
// "30x20x15:4, 40x30x20:2(SD-1)".
func ParseItems(s string) ([]model.Item, error) {
	var items []model.Item
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		it, err := ParseItem(part)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no items in %q", s)
	}
	return items, nil
}
