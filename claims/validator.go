// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package claims

import (
	"fmt"
	"regexp"
)

// Validator constrains the claims a schema slot accepts.
type Validator interface {
	// Validate returns nil when the claim satisfies the rule.
	Validate(claim ClaimData) error
}

// LengthValidator bounds the byte length of hashed claims.
type LengthValidator struct {
	Min int
	Max int
}

// Validate checks the claim's length bounds.
func (v LengthValidator) Validate(claim ClaimData) error {
	h, ok := claim.(HashedClaim)
	if !ok {
		return fmt.Errorf("%w: length validator applies to hashed claims", ErrInvalidClaimData)
	}
	max := v.Max
	if max == 0 {
		max = int(^uint32(0))
	}
	if len(h.Value) < v.Min || len(h.Value) > max {
		return fmt.Errorf("%w: value length %d outside [%d, %d]", ErrInvalidClaimData, len(h.Value), v.Min, max)
	}
	return nil
}

// RangeValidator bounds number claims.
type RangeValidator struct {
	Min int64
	Max int64
}

// Validate checks the claim's numeric bounds.
func (v RangeValidator) Validate(claim ClaimData) error {
	n, ok := claim.(NumberClaim)
	if !ok {
		return fmt.Errorf("%w: range validator applies to number claims", ErrInvalidClaimData)
	}
	if n.Value < v.Min || n.Value > v.Max {
		return fmt.Errorf("%w: value %d outside [%d, %d]", ErrInvalidClaimData, n.Value, v.Min, v.Max)
	}
	return nil
}

// RegexValidator matches hashed claims against a pattern.
type RegexValidator struct {
	Pattern string
}

// Validate checks the claim against the compiled pattern.
func (v RegexValidator) Validate(claim ClaimData) error {
	h, ok := claim.(HashedClaim)
	if !ok {
		return fmt.Errorf("%w: regex validator applies to hashed claims", ErrInvalidClaimData)
	}
	re, err := regexp.Compile(v.Pattern)
	if err != nil {
		return fmt.Errorf("%w: invalid pattern: %v", ErrInvalidClaimData, err)
	}
	if !re.Match(h.Value) {
		return fmt.Errorf("%w: value does not match %q", ErrInvalidClaimData, v.Pattern)
	}
	return nil
}

// AnyOneValidator accepts only the listed claims.
type AnyOneValidator struct {
	Values []ClaimData
}

// Validate checks the claim equals one of the allowed values.
func (v AnyOneValidator) Validate(claim ClaimData) error {
	target := claim.ToScalar()
	for i := range v.Values {
		allowed := v.Values[i].ToScalar()
		if target.Equal(&allowed) {
			return nil
		}
	}
	return fmt.Errorf("%w: value not in the allowed set", ErrInvalidClaimData)
}
