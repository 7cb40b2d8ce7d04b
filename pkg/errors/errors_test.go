//
// Copyright (c) 2023, NVIDIA CORPORATION. All rights reserved.
//
// See LICENSE.txt for license information
//

package errors

import (
	"fmt"
	"testing"
)

func TestIsCategory(t *testing.T) {
	cfgErr := New(ErrConfig, fmt.Errorf("10 ranks is not a perfect cube"))
	tests := []struct {
		err      error
		category InternalError
		expected bool
	}{
		{
			err:      cfgErr,
			category: ErrConfig,
			expected: true,
		},
		{
			err:      cfgErr,
			category: ErrNotFound,
			expected: false,
		},
		{
			err:      fmt.Errorf("submitting job: %w", cfgErr),
			category: ErrConfig,
			expected: true,
		},
		{
			err:      fmt.Errorf("plain error"),
			category: ErrConfig,
			expected: false,
		},
		{
			err:      nil,
			category: ErrNone,
			expected: true,
		},
	}

	for _, tt := range tests {
		if IsCategory(tt.err, tt.category) != tt.expected {
			t.Fatalf("IsCategory(%v, %s) returned %t instead of %t", tt.err, tt.category.msg, !tt.expected, tt.expected)
		}
	}
}

func TestError(t *testing.T) {
	e := New(ErrMissingKey, fmt.Errorf("Hydro"))
	if e.Error() != "Missing key: Hydro" {
		t.Fatalf("Error() returned %q", e.Error())
	}
	if e.Code() != -5 {
		t.Fatalf("Code() returned %d instead of -5", e.Code())
	}
	if New(ErrFatal, nil).Error() != "Fatal error" {
		t.Fatalf("error without details is not reported with its category only")
	}
}
