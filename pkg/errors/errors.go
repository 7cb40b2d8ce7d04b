//
// Copyright (c) 2020-2023, NVIDIA CORPORATION. All rights reserved.
//
// See LICENSE.txt for license information
//

package errors

type InternalError struct {
	msg  string // message associated to the error
	code int    // error code
}

// ScalingError associates one of our error categories to the error that triggered it
type ScalingError struct {
	internal InternalError
	details  error
}

// ErrNone means success
var ErrNone = InternalError{"Success", 0}

// ErrNotFound means that the object/entity requested could not be found
var ErrNotFound = InternalError{"Not found", -1}

// ErrInvalidHeader means we could not get the header of a timing log
var ErrInvalidHeader = InternalError{"Invalid header", -2}

// ErrFatal means that a fatal error occured
var ErrFatal = InternalError{"Fatal error", -3}

// ErrConfig means that the parameters of a job or a campaign are inconsistent,
// e.g., a rank count that is not a perfect cube
var ErrConfig = InternalError{"Configuration error", -4}

// ErrMissingKey means that a metric is not present in a timing table
var ErrMissingKey = InternalError{"Missing key", -5}

func New(i InternalError, err error) *ScalingError {
	e := new(ScalingError)
	e.details = err
	e.internal = i
	return e
}

func (e *ScalingError) Error() string {
	if e.details == nil {
		return e.internal.msg
	}
	return e.internal.msg + ": " + e.details.Error()
}

func (e *ScalingError) Is(i InternalError) bool {
	if e == nil {
		return i == ErrNone
	}
	return e.internal == i
}

func (e *ScalingError) GetInternal() error {
	return e.details
}

// Unwrap gives access to the error that triggered the ScalingError
func (e *ScalingError) Unwrap() error {
	return e.details
}

// Code returns the numerical code of the error category
func (e *ScalingError) Code() int {
	return e.internal.code
}

// IsCategory checks whether err is a ScalingError of the given category
func IsCategory(err error, i InternalError) bool {
	for err != nil {
		if e, ok := err.(*ScalingError); ok {
			return e.Is(i)
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return i == ErrNone
}
