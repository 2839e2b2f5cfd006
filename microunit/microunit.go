// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 GitCoin Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package microunit

import (
	"fmt"
)

// MicroUnit - the smallest indivisible amount of the token
//
// all monetary arithmetic is integer, display conversion only happens
// at the edges
type MicroUnit uint64

// PerUnit - number of MicroUnit in one display unit
const PerUnit MicroUnit = 1_000_000

// decimal places in a display amount
const decimalPlaces = 6

// FromByteString - convert a display amount string to a MicroUnit value
//
// i.e. "0.000001" will convert to MicroUnit(1)
//
// Note: Invalid characters are simply ignored and the conversion
//       simply stops after 6 decimal places have been processed.
//       Extra decimal points will also be ignored.
func FromByteString(amount []byte) MicroUnit {

	m := uint64(0)
	point := false
	decimals := 0

get_digits:
	for _, b := range amount {
		if b >= '0' && b <= '9' {
			m *= 10
			m += uint64(b - '0')
			if point {
				decimals += 1
				if decimals >= decimalPlaces {
					break get_digits
				}
			}
		} else if '.' == b {
			point = true
		}
	}
	for decimals < decimalPlaces {
		m *= 10
		decimals += 1
	}

	return MicroUnit(m)
}

// Uint64 - the raw integer value
func (m MicroUnit) Uint64() uint64 {
	return uint64(m)
}

// String - format as a display amount with six decimal places
func (m MicroUnit) String() string {
	return fmt.Sprintf("%d.%06d", uint64(m/PerUnit), uint64(m%PerUnit))
}
