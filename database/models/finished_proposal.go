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

package models

import (
	"github.com/blinklabs-io/gouroboros/cbor"
)

// FinishedProposal is the archived snapshot of a closed proposal. It is
// stored CBOR-encoded in the blob store and never modified after insertion
type FinishedProposal struct {
	cbor.StructAsArray
	Id          uint32
	ContentHash []byte
	EndTick     uint64
	Options     []FinishedProposalOption
	WinnerIndex uint8
	// Vote totals are decimal strings, since they may exceed 64 bits
	WinnerVotes string
}

type FinishedProposalOption struct {
	cbor.StructAsArray
	Id          uint8
	Votes       string
	ContentHash []byte
}

// Encode returns the CBOR encoding of the finished proposal
func (p *FinishedProposal) Encode() ([]byte, error) {
	return cbor.Encode(p)
}

// DecodeFinishedProposal decodes a finished proposal from its CBOR encoding
func DecodeFinishedProposal(data []byte) (*FinishedProposal, error) {
	ret := &FinishedProposal{}
	if _, err := cbor.Decode(data, ret); err != nil {
		return nil, err
	}
	return ret, nil
}
