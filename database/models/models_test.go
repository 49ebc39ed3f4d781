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

package models_test

import (
	"testing"

	"github.com/blinklabs-io/ballot/database/models"
	"github.com/stretchr/testify/require"
)

func TestFinishedProposalEncodeDecode(t *testing.T) {
	orig := &models.FinishedProposal{
		Id:          7,
		ContentHash: []byte{0xab, 0xcd},
		EndTick:     15,
		Options: []models.FinishedProposalOption{
			{Id: 0, Votes: "6", ContentHash: []byte{0x01}},
			{Id: 1, Votes: "340282366920938463463374607431768211455", ContentHash: []byte{0x02}},
		},
		WinnerIndex: 1,
		WinnerVotes: "340282366920938463463374607431768211455",
	}
	data, err := orig.Encode()
	require.NoError(t, err)
	decoded, err := models.DecodeFinishedProposal(data)
	require.NoError(t, err)
	require.Equal(t, orig.Id, decoded.Id)
	require.Equal(t, orig.ContentHash, decoded.ContentHash)
	require.Equal(t, orig.EndTick, decoded.EndTick)
	require.Equal(t, orig.WinnerIndex, decoded.WinnerIndex)
	require.Equal(t, orig.WinnerVotes, decoded.WinnerVotes)
	require.Len(t, decoded.Options, 2)
	require.Equal(t, orig.Options[1].Votes, decoded.Options[1].Votes)
}

func TestDecodeFinishedProposalInvalid(t *testing.T) {
	_, err := models.DecodeFinishedProposal([]byte{0xff, 0x00})
	require.Error(t, err)
}
