// Copyright 2026 Blink Labs Software
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

package types_test

import (
	"database/sql"
	"database/sql/driver"
	"reflect"
	"testing"

	"github.com/blinklabs-io/ballot/database/types"
	"lukechampine.com/uint128"
)

func TestTypesScanValue(t *testing.T) {
	bigVal, err := uint128.FromString("340282366920938463463374607431768211455")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	testDefs := []struct {
		origValue     any
		expectedValue any
	}{
		{
			origValue: func(v types.Uint64) *types.Uint64 { return &v }(
				types.Uint64(123),
			),
			expectedValue: "123",
		},
		{
			origValue: func(v types.Uint128) *types.Uint128 { return &v }(
				types.NewUint128(uint128.From64(14)),
			),
			expectedValue: "14",
		},
		{
			origValue: func(v types.Uint128) *types.Uint128 { return &v }(
				types.NewUint128(bigVal),
			),
			expectedValue: "340282366920938463463374607431768211455",
		},
	}
	var ok bool
	var tmpScanner sql.Scanner
	var tmpValuer driver.Valuer
	for _, testDef := range testDefs {
		tmpValuer, ok = testDef.origValue.(driver.Valuer)
		if !ok {
			t.Fatalf("test original value does not implement driver.Valuer")
		}
		valueOut, err := tmpValuer.Value()
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if !reflect.DeepEqual(valueOut, testDef.expectedValue) {
			t.Fatalf(
				"did not get expected value from Value(): got %#v, expected %#v",
				valueOut,
				testDef.expectedValue,
			)
		}
		tmpScanner, ok = testDef.origValue.(sql.Scanner)
		if !ok {
			t.Fatalf(
				"test original value does not implement sql.Scanner (it must be a pointer)",
			)
		}
		if err := tmpScanner.Scan(valueOut); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if !reflect.DeepEqual(tmpScanner, testDef.origValue) {
			t.Fatalf(
				"did not get expected value after Scan(): got %#v, expected %#v",
				tmpScanner,
				testDef.origValue,
			)
		}
	}
}

func TestUint128ScanBytes(t *testing.T) {
	var tmp types.Uint128
	if err := tmp.Scan([]byte("10")); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if !tmp.Equals64(10) {
		t.Fatalf("did not get expected value: got %s", tmp.String())
	}
	if err := tmp.Scan(int64(10)); err == nil {
		t.Fatalf("did not get expected error scanning int64")
	}
}

func TestFinishedProposalKey(t *testing.T) {
	key := types.FinishedProposalKey(258)
	if string(key[:2]) != types.FinishedProposalKeyPrefix {
		t.Fatalf("key does not start with prefix: %x", key)
	}
	id, ok := types.FinishedProposalIdFromKey(key)
	if !ok || id != 258 {
		t.Fatalf("did not round-trip proposal id: got %d (ok=%v)", id, ok)
	}
	if _, ok := types.FinishedProposalIdFromKey([]byte("fpx")); ok {
		t.Fatalf("accepted malformed key")
	}
}
