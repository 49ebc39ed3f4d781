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

package types

import (
	"encoding/binary"
)

const (
	FinishedProposalKeyPrefix = "fp"
	CommitTimestampKey        = "metadata_commit_timestamp"
)

// FinishedProposalKey builds the blob key for an archived proposal. The id is
// big-endian encoded so that prefix iteration returns proposals in id order
func FinishedProposalKey(proposalId uint32) []byte {
	key := []byte(FinishedProposalKeyPrefix)
	idBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(idBytes, proposalId)
	key = append(key, idBytes...)
	return key
}

// FinishedProposalIdFromKey extracts the proposal id from an archive blob key
func FinishedProposalIdFromKey(key []byte) (uint32, bool) {
	prefixLen := len(FinishedProposalKeyPrefix)
	if len(key) != prefixLen+4 ||
		string(key[:prefixLen]) != FinishedProposalKeyPrefix {
		return 0, false
	}
	return binary.BigEndian.Uint32(key[prefixLen:]), true
}
