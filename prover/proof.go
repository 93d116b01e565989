/*
 * Copyright 2024-2026 Hyli Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package prover

import (
	"github.com/jinzhu/gorm"

	"github.com/hyli-org/attest/common"
)

const proofStatusPending = "pending"
const proofStatusCompleted = "completed"
const proofStatusFailed = "failed"

// ProofRecord is the persisted audit record of a proof-transaction build;
// the record is created when a request is accepted and reaches a terminal
// status exactly once, either completed with the reconstructed proof or
// failed with a description
type ProofRecord struct {
	common.Model

	ContractName *string `sql:"not null" json:"contract_name"`
	Identity     *string `json:"identity"`
	TxHash       *string `json:"tx_hash"`
	BlobIndex    uint32  `json:"blob_index"`
	TxBlobCount  uint32  `json:"tx_blob_count"`

	Blob    []byte `gorm:"column:blob" json:"blob,omitempty"`
	Witness []byte `gorm:"column:witness" json:"-"`

	ProgramID []byte `gorm:"column:program_id" json:"program_id,omitempty"`
	Proof     []byte `gorm:"column:proof" json:"proof,omitempty"`

	Status      *string `sql:"not null;default:'pending'" json:"status"`
	Description *string `json:"description,omitempty"`
}

// TableName returns the db table name
func (p *ProofRecord) TableName() string {
	return "proofs"
}

// Create persists the proof record
func (p *ProofRecord) Create(db *gorm.DB) bool {
	if !p.validate() {
		return false
	}

	if db.NewRecord(p) {
		result := db.Create(&p)
		rowsAffected := result.RowsAffected
		errors := result.GetErrors()
		if len(errors) > 0 {
			for _, err := range errors {
				p.Errors = append(p.Errors, &common.Error{
					Message: common.StringOrNil(err.Error()),
				})
			}
		}
		if !db.NewRecord(p) {
			success := rowsAffected > 0
			if success {
				common.Log.Debugf("initialized %s proof record: %s", *p.ContractName, p.ID)
			}
			return success
		}
	}

	return false
}

// validate the proof record params
func (p *ProofRecord) validate() bool {
	p.Errors = make([]*common.Error, 0)

	if p.ContractName == nil {
		p.Errors = append(p.Errors, &common.Error{
			Message: common.StringOrNil("contract name required"),
		})
	}

	return len(p.Errors) == 0
}

func (p *ProofRecord) updateStatus(db *gorm.DB, status string, description *string) {
	p.Status = common.StringOrNil(status)
	p.Description = description

	result := db.Save(&p)
	errors := result.GetErrors()
	if len(errors) > 0 {
		for _, err := range errors {
			p.Errors = append(p.Errors, &common.Error{
				Message: common.StringOrNil(err.Error()),
			})
		}
	}
}
