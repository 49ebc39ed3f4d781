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

package metadata

import (
	"fmt"

	"github.com/blinklabs-io/ballot/database/models"
	"github.com/blinklabs-io/ballot/database/plugin"
	"github.com/blinklabs-io/ballot/database/types"
	"gorm.io/gorm"

	// Register the metadata plugins
	_ "github.com/blinklabs-io/ballot/database/plugin/metadata/postgres"
	_ "github.com/blinklabs-io/ballot/database/plugin/metadata/sqlite"
)

type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Voter registry
	GetVoter(string, types.Txn) (*models.Voter, error)
	GetVoters(types.Txn) ([]models.Voter, error)
	SetVoter(*models.Voter, types.Txn) error
	DeleteVoter(string, types.Txn) error

	// Vote ledger
	GetVotedProposal(string, types.Txn) (uint32, bool, error)
	SetVotedProposal(string, uint32, types.Txn) error

	// Proposal lifecycle
	GetActiveProposal(types.Txn) (*models.ActiveProposal, error)
	SetActiveProposal(*models.ActiveProposal, types.Txn) error
	DeleteActiveProposal(types.Txn) error
	GetProposalCounter(types.Txn) (uint32, error)
	SetProposalCounter(uint32, types.Txn) error

	// Clock
	GetClockTick(types.Txn) (uint64, error)
	SetClockTick(uint64, types.Txn) error

	// Collateral
	GetCollateralAccount(string, types.Txn) (*models.CollateralAccount, error)
	GetCollateralAccounts(types.Txn) ([]models.CollateralAccount, error)
	SetCollateralAccount(*models.CollateralAccount, types.Txn) error
}

// New returns the started metadata plugin selected by name
func New(pluginName string) (MetadataStore, error) {
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, pluginName)
	if err != nil {
		return nil, err
	}
	metadataStore, ok := p.(MetadataStore)
	if !ok {
		_ = p.Stop()
		return nil, fmt.Errorf(
			"plugin '%s' does not implement MetadataStore interface",
			pluginName,
		)
	}
	return metadataStore, nil
}
