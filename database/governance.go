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

package database

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/database/types"
)

// ErrFinishedProposalNotFound is returned when no archived proposal exists with the given id
var ErrFinishedProposalNotFound = errors.New("finished proposal not found")

// GetVoter returns the voter record for an account, or nil if the account is
// not registered
func (d *Database) GetVoter(
	account string,
	txn *Txn,
) (*models.Voter, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetVoter(account, txn.Metadata())
}

// GetVoters returns all registered voters
func (d *Database) GetVoters(txn *Txn) ([]models.Voter, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetVoters(txn.Metadata())
}

func (d *Database) SetVoter(voter *models.Voter, txn *Txn) error {
	if txn == nil {
		return d.Transaction(true).Do(func(txn *Txn) error {
			return d.SetVoter(voter, txn)
		})
	}
	return d.metadata.SetVoter(voter, txn.Metadata())
}

func (d *Database) DeleteVoter(account string, txn *Txn) error {
	if txn == nil {
		return d.Transaction(true).Do(func(txn *Txn) error {
			return d.DeleteVoter(account, txn)
		})
	}
	return d.metadata.DeleteVoter(account, txn.Metadata())
}

// GetVotedProposal returns the last proposal id an account voted on and
// whether the account has voted at all
func (d *Database) GetVotedProposal(
	account string,
	txn *Txn,
) (uint32, bool, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetVotedProposal(account, txn.Metadata())
}

func (d *Database) SetVotedProposal(
	account string,
	proposalId uint32,
	txn *Txn,
) error {
	if txn == nil {
		return d.Transaction(true).Do(func(txn *Txn) error {
			return d.SetVotedProposal(account, proposalId, txn)
		})
	}
	return d.metadata.SetVotedProposal(account, proposalId, txn.Metadata())
}

// GetActiveProposal returns the active proposal, or nil if there is none
func (d *Database) GetActiveProposal(
	txn *Txn,
) (*models.ActiveProposal, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetActiveProposal(txn.Metadata())
}

func (d *Database) SetActiveProposal(
	proposal *models.ActiveProposal,
	txn *Txn,
) error {
	if txn == nil {
		return d.Transaction(true).Do(func(txn *Txn) error {
			return d.SetActiveProposal(proposal, txn)
		})
	}
	return d.metadata.SetActiveProposal(proposal, txn.Metadata())
}

func (d *Database) DeleteActiveProposal(txn *Txn) error {
	if txn == nil {
		return d.Transaction(true).Do(func(txn *Txn) error {
			return d.DeleteActiveProposal(txn)
		})
	}
	return d.metadata.DeleteActiveProposal(txn.Metadata())
}

// GetProposalCounter returns the id that the next created proposal will get
func (d *Database) GetProposalCounter(txn *Txn) (uint32, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetProposalCounter(txn.Metadata())
}

func (d *Database) SetProposalCounter(counter uint32, txn *Txn) error {
	if txn == nil {
		return d.Transaction(true).Do(func(txn *Txn) error {
			return d.SetProposalCounter(counter, txn)
		})
	}
	return d.metadata.SetProposalCounter(counter, txn.Metadata())
}

// GetFinishedProposal returns an archived proposal from the blob store
func (d *Database) GetFinishedProposal(
	proposalId uint32,
	txn *Txn,
) (*models.FinishedProposal, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	data, err := d.blob.Get(txn.Blob(), types.FinishedProposalKey(proposalId))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return nil, ErrFinishedProposalNotFound
		}
		return nil, err
	}
	ret, err := models.DecodeFinishedProposal(data)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to decode finished proposal %d: %w",
			proposalId,
			err,
		)
	}
	return ret, nil
}

// GetFinishedProposals returns all archived proposals in id order
func (d *Database) GetFinishedProposals(
	txn *Txn,
) ([]*models.FinishedProposal, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	prefix := []byte(types.FinishedProposalKeyPrefix)
	iter := d.blob.NewIterator(
		txn.Blob(),
		types.BlobIteratorOptions{Prefix: prefix},
	)
	defer iter.Close()
	var ret []*models.FinishedProposal
	for iter.Rewind(); iter.ValidForPrefix(prefix); iter.Next() {
		item := iter.Item()
		if _, ok := types.FinishedProposalIdFromKey(item.Key()); !ok {
			continue
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		tmpProposal, err := models.DecodeFinishedProposal(data)
		if err != nil {
			return nil, fmt.Errorf(
				"failed to decode finished proposal: %w",
				err,
			)
		}
		ret = append(ret, tmpProposal)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

// AddFinishedProposal archives a proposal. Archived proposals are never
// overwritten
func (d *Database) AddFinishedProposal(
	proposal *models.FinishedProposal,
	txn *Txn,
) error {
	if txn == nil {
		return d.Transaction(true).Do(func(txn *Txn) error {
			return d.AddFinishedProposal(proposal, txn)
		})
	}
	key := types.FinishedProposalKey(proposal.Id)
	if _, err := d.blob.Get(txn.Blob(), key); err == nil {
		return fmt.Errorf("finished proposal %d already archived", proposal.Id)
	} else if !errors.Is(err, types.ErrBlobKeyNotFound) {
		return err
	}
	data, err := proposal.Encode()
	if err != nil {
		return fmt.Errorf(
			"failed to encode finished proposal %d: %w",
			proposal.Id,
			err,
		)
	}
	return d.blob.Set(txn.Blob(), key, data)
}
