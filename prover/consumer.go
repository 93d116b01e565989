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
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	dbconf "github.com/kthomas/go-db-config"
	natsutil "github.com/kthomas/go-natsutil"
	uuid "github.com/kthomas/go.uuid"
	"github.com/nats-io/nats.go"

	"github.com/hyli-org/attest/common"
	zkp "github.com/hyli-org/attest/zkp/providers"
)

const defaultNatsStream = "attest"

const natsProofPendingSubject = "attest.proof.generation.pending"
const natsProofCompletedSubject = "attest.proof.generation.completed"
const natsProofFailedSubject = "attest.proof.generation.failed"

const natsProofPendingMaxInFlight = 8
const proofGenerationAckWait = time.Minute * 15
const proofGenerationMaxDeliveries = 2

func init() {
	if !common.ConsumeNATSStreamingSubscriptions {
		common.Log.Debug("prover package consumer configured to skip NATS streaming subscription setup")
		return
	}

	natsutil.EstablishSharedNatsConnection(nil)
	natsutil.NatsCreateStream(defaultNatsStream, []string{
		fmt.Sprintf("%s.>", defaultNatsStream),
	})

	var waitGroup sync.WaitGroup

	createNatsProofPendingSubscriptions(&waitGroup)
}

func createNatsProofPendingSubscriptions(wg *sync.WaitGroup) {
	for i := uint64(0); i < natsutil.GetNatsConsumerConcurrency(); i++ {
		natsutil.RequireNatsJetstreamSubscription(wg,
			proofGenerationAckWait,
			natsProofPendingSubject,
			natsProofPendingSubject,
			natsProofPendingSubject,
			consumeProofPendingMsg,
			proofGenerationAckWait,
			natsProofPendingMaxInFlight,
			proofGenerationMaxDeliveries,
			nil,
		)
	}
}

func consumeProofPendingMsg(msg *nats.Msg) {
	defer func() {
		if r := recover(); r != nil {
			common.Log.Warningf("recovered during async proof generation; %s", r)
			msg.Nak()
		}
	}()

	common.Log.Debugf("consuming %d-byte NATS proof generation message on subject: %s", len(msg.Data), msg.Subject)

	params := map[string]interface{}{}
	err := json.Unmarshal(msg.Data, &params)
	if err != nil {
		common.Log.Warningf("failed to unmarshal proof generation message; %s", err.Error())
		msg.Nak()
		return
	}

	proofID, proofIDOk := params["proof_id"].(string)
	if !proofIDOk {
		common.Log.Warning("failed to unmarshal proof_id during proof generation message handler")
		msg.Nak()
		return
	}

	db := dbconf.DatabaseConnection()

	record := &ProofRecord{}
	db.Where("id = ?", proofID).Find(&record)

	if record == nil || record.ID == uuid.Nil {
		common.Log.Warningf("failed to resolve proof record during async proof generation; proof id: %s", proofID)
		msg.Nak()
		return
	}

	backend := zkp.BackendFactory(common.DefaultProvingBackend)
	if backend == nil {
		common.Log.Warning("failed to resolve proving backend during async proof generation")
		msg.Nak()
		return
	}

	pipeline := InitPipeline(backend)
	tx, err := pipeline.ProveWitness(context.Background(), *record.ContractName, record.Witness)
	if err != nil {
		// re-proving an identical witness is deterministic; mark the record
		// failed and ack instead of redelivering
		common.Log.Warningf("async proof generation failed for proof record %s; %s", record.ID, err.Error())
		record.updateStatus(db, proofStatusFailed, common.StringOrNil(err.Error()))
		natsutil.NatsJetstreamPublish(natsProofFailedSubject, msg.Data)
		msg.Ack()
		return
	}

	record.Proof = tx.Proof
	record.ProgramID = tx.ProgramID
	record.updateStatus(db, proofStatusCompleted, nil)

	common.Log.Debugf("async proof generation completed for proof record: %s", record.ID)
	natsutil.NatsJetstreamPublish(natsProofCompletedSubject, msg.Data)
	msg.Ack()
}
