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

package gormstore

import (
	"errors"

	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetVoter returns the voter record for an account, or nil if the account is
// not registered
func (s *Store) GetVoter(
	account string,
	txn types.Txn,
) (*models.Voter, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Voter{}
	result := db.Where("account = ?", account).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// GetVoters returns all voter records ordered by account
func (s *Store) GetVoters(txn types.Txn) ([]models.Voter, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.Voter
	result := db.Order("account ASC").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetVoter creates or overwrites the voter record for an account
func (s *Store) SetVoter(voter *models.Voter, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	tmpVoter := models.Voter{
		Account:     voter.Account,
		VotingPower: voter.VotingPower,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account"}},
		DoUpdates: clause.AssignmentColumns([]string{"voting_power"}),
	}).Create(&tmpVoter)
	return result.Error
}

// DeleteVoter removes the voter record for an account
func (s *Store) DeleteVoter(account string, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Where("account = ?", account).Delete(&models.Voter{})
	return result.Error
}

// GetVotedProposal returns the last proposal id voted on by an account. The
// second return value is false if the account has never voted
func (s *Store) GetVotedProposal(
	account string,
	txn types.Txn,
) (uint32, bool, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return 0, false, err
	}
	var tmpVoted models.VotedProposal
	result := db.Where("account = ?", account).First(&tmpVoted)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, result.Error
	}
	return tmpVoted.ProposalId, true, nil
}

// SetVotedProposal records the proposal id an account voted on
func (s *Store) SetVotedProposal(
	account string,
	proposalId uint32,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	tmpVoted := models.VotedProposal{
		Account:    account,
		ProposalId: proposalId,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account"}},
		DoUpdates: clause.AssignmentColumns([]string{"proposal_id"}),
	}).Create(&tmpVoted)
	return result.Error
}

// GetActiveProposal returns the active proposal with its options ordered by
// option id, or nil if no proposal is active
func (s *Store) GetActiveProposal(
	txn types.Txn,
) (*models.ActiveProposal, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.ActiveProposal{}
	result := db.Preload(
		"Options",
		func(db *gorm.DB) *gorm.DB {
			return db.Order("option_id ASC")
		},
	).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetActiveProposal replaces the active proposal, including all of its
// options, with the given value
func (s *Store) SetActiveProposal(
	proposal *models.ActiveProposal,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	if err := deleteActiveProposal(db); err != nil {
		return err
	}
	tmpProposal := models.ActiveProposal{
		ProposalId:  proposal.ProposalId,
		ContentHash: proposal.ContentHash,
		EndTick:     proposal.EndTick,
	}
	for _, option := range proposal.Options {
		tmpProposal.Options = append(
			tmpProposal.Options,
			models.ProposalOption{
				ProposalId:  proposal.ProposalId,
				OptionId:    option.OptionId,
				Votes:       option.Votes,
				ContentHash: option.ContentHash,
			},
		)
	}
	result := db.Create(&tmpProposal)
	return result.Error
}

// DeleteActiveProposal clears the active proposal slot
func (s *Store) DeleteActiveProposal(txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return deleteActiveProposal(db)
}

func deleteActiveProposal(db *gorm.DB) error {
	db = db.Session(&gorm.Session{AllowGlobalUpdate: true})
	if result := db.Delete(&models.ProposalOption{}); result.Error != nil {
		return result.Error
	}
	if result := db.Delete(&models.ActiveProposal{}); result.Error != nil {
		return result.Error
	}
	return nil
}

// GetProposalCounter returns the next proposal id to be assigned. The
// counter starts at 1
func (s *Store) GetProposalCounter(txn types.Txn) (uint32, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var tmpState models.GovernanceState
	result := db.First(&tmpState, singletonRowId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 1, nil
		}
		return 0, result.Error
	}
	return tmpState.ProposalCounter, nil
}

// SetProposalCounter stores the next proposal id to be assigned
func (s *Store) SetProposalCounter(counter uint32, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	tmpState := models.GovernanceState{
		ID:              singletonRowId,
		ProposalCounter: counter,
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"proposal_counter"}),
	}).Create(&tmpState)
	return result.Error
}

// GetClockTick returns the stored clock tick, or 0 if none has been stored
func (s *Store) GetClockTick(txn types.Txn) (uint64, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var tmpClock models.ClockState
	result := db.First(&tmpClock, singletonRowId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, result.Error
	}
	return uint64(tmpClock.Tick), nil
}

// SetClockTick stores the clock tick
func (s *Store) SetClockTick(tick uint64, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	tmpClock := models.ClockState{
		ID:   singletonRowId,
		Tick: types.Uint64(tick),
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"tick"}),
	}).Create(&tmpClock)
	return result.Error
}
