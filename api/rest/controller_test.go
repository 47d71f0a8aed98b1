// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package rest_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/proof-ledger/api/rest"
	"github.com/optakt/proof-ledger/models/proof"
	"github.com/optakt/proof-ledger/testing/mocks"
)

func TestController_SubmitProof(t *testing.T) {
	const validBody = `{"entityId":"NGO1","deliveryId":"DEL-1","evidenceLocator":"https://x/y.jpg","temperature":25,"notes":"ok"}`

	tests := []struct {
		desc string
		body string

		append func(proof.Payload) (proof.Block, error)

		wantStatus  int
		wantPayload *proof.Payload
	}{
		{
			desc: "nominal case with numeric temperature",
			body: validBody,

			wantStatus: http.StatusCreated,
			wantPayload: &proof.Payload{
				EntityID:        "NGO1",
				DeliveryID:      "DEL-1",
				EvidenceLocator: "https://x/y.jpg",
				Temperature:     "25",
				Notes:           "ok",
			},
		},
		{
			desc: "nominal case with textual temperature and no notes",
			body: `{"entityId":"NGO1","deliveryId":"DEL-1","evidenceLocator":"https://x/y.jpg","temperature":"4.5C"}`,

			wantStatus: http.StatusCreated,
			wantPayload: &proof.Payload{
				EntityID:        "NGO1",
				DeliveryID:      "DEL-1",
				EvidenceLocator: "https://x/y.jpg",
				Temperature:     "4.5C",
			},
		},
		{
			desc:       "malformed JSON",
			body:       `{"entityId":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			desc:       "temperature of invalid type",
			body:       `{"entityId":"NGO1","deliveryId":"DEL-1","evidenceLocator":"u","temperature":true}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			desc:       "missing entity",
			body:       `{"entityId":"","deliveryId":"DEL-2","evidenceLocator":"u"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			desc:       "blank delivery",
			body:       `{"entityId":"NGO1","deliveryId":"   ","evidenceLocator":"u"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			desc:       "reserved locator",
			body:       `{"entityId":"NGO1","deliveryId":"DEL-2","evidenceLocator":"genesis"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			desc: "payload rejected by ledger",
			body: validBody,
			append: func(proof.Payload) (proof.Block, error) {
				return proof.Block{}, fmt.Errorf("invalid: %w", proof.ErrInvalidPayload)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			desc: "journal failure",
			body: validBody,
			append: func(proof.Payload) (proof.Block, error) {
				return proof.Block{}, mocks.GenericError
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.desc, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/proofs", strings.NewReader(test.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			ctx := echo.New().NewContext(req, rec)

			var got *proof.Payload
			ledger := mocks.BaselineLedger(t)
			ledger.AppendFunc = func(payload proof.Payload) (proof.Block, error) {
				got = &payload
				if test.append != nil {
					return test.append(payload)
				}
				block := mocks.GenericBlock(3)
				block.Payload = payload
				return block, nil
			}

			c := rest.NewController(ledger, rest.NewValidator())

			err := c.SubmitProof(ctx)

			if test.wantStatus != http.StatusCreated {
				// Note: See https://github.com/labstack/echo/issues/593
				httpErr, ok := err.(*echo.HTTPError)
				require.True(t, ok)
				assert.Equal(t, test.wantStatus, httpErr.Code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, http.StatusCreated, rec.Code)
			assert.Equal(t, test.wantPayload, got)

			var block proof.Block
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &block))
			assert.Equal(t, uint64(3), block.Index)
			assert.Equal(t, *test.wantPayload, block.Payload)
		})
	}
}

func TestController_GetLedger(t *testing.T) {
	t.Run("nominal case", func(t *testing.T) {
		rec, ctx := get(t, "/ledger")
		ledger := mocks.BaselineLedger(t)

		err := rest.NewController(ledger, rest.NewValidator()).GetLedger(ctx)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var res rest.LedgerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.True(t, res.IsValid)
		assert.Nil(t, res.FirstInvalidIndex)
		assert.Equal(t, ledger.Chain(), res.Chain)
		assert.NotContains(t, rec.Body.String(), "firstInvalidIndex")
	})

	t.Run("corrupted chain", func(t *testing.T) {
		rec, ctx := get(t, "/ledger")
		ledger := mocks.BaselineLedger(t)
		first := uint64(1)
		ledger.VerifyFunc = func() proof.Report {
			return proof.Report{FirstInvalid: &first, Violation: proof.ViolationHash, Length: 3}
		}

		err := rest.NewController(ledger, rest.NewValidator()).GetLedger(ctx)

		require.NoError(t, err)
		var res rest.LedgerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.False(t, res.IsValid)
		require.NotNil(t, res.FirstInvalidIndex)
		assert.Equal(t, uint64(1), *res.FirstInvalidIndex)
	})

	t.Run("chain cut to verified length", func(t *testing.T) {
		rec, ctx := get(t, "/ledger")
		ledger := mocks.BaselineLedger(t)
		ledger.VerifyFunc = func() proof.Report {
			return proof.Report{Valid: true, Length: 2}
		}

		err := rest.NewController(ledger, rest.NewValidator()).GetLedger(ctx)

		require.NoError(t, err)
		var res rest.LedgerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, ledger.Chain()[:2], res.Chain)
	})
}

func TestController_GetVerify(t *testing.T) {
	rec, ctx := get(t, "/ledger/verify")
	ledger := mocks.BaselineLedger(t)

	err := rest.NewController(ledger, rest.NewValidator()).GetVerify(ctx)

	require.NoError(t, err)
	var report proof.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, ledger.Verify(), report)
}

func TestController_GetBlock(t *testing.T) {
	tests := []struct {
		desc  string
		index string

		block func(uint64) (proof.Block, error)

		wantStatus int
		wantIndex  uint64
	}{
		{
			desc:       "nominal case",
			index:      "1",
			wantStatus: http.StatusOK,
			wantIndex:  1,
		},
		{
			desc:       "non-numeric index",
			index:      "first",
			wantStatus: http.StatusBadRequest,
		},
		{
			desc:       "negative index",
			index:      "-1",
			wantStatus: http.StatusBadRequest,
		},
		{
			desc:  "index past the end",
			index: "42",
			block: func(uint64) (proof.Block, error) {
				return proof.Block{}, fmt.Errorf("unknown block: %w", proof.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			desc:  "internal error",
			index: "1",
			block: func(uint64) (proof.Block, error) {
				return proof.Block{}, mocks.GenericError
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.desc, func(t *testing.T) {
			t.Parallel()

			rec, ctx := get(t, "/blocks/:index")
			ctx.SetParamNames("index")
			ctx.SetParamValues(test.index)

			ledger := mocks.BaselineLedger(t)
			if test.block != nil {
				ledger.BlockFunc = test.block
			}

			err := rest.NewController(ledger, rest.NewValidator()).GetBlock(ctx)

			if test.wantStatus != http.StatusOK {
				httpErr, ok := err.(*echo.HTTPError)
				require.True(t, ok)
				assert.Equal(t, test.wantStatus, httpErr.Code)
				return
			}

			require.NoError(t, err)
			var block proof.Block
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &block))
			assert.Equal(t, test.wantIndex, block.Index)
		})
	}
}

func TestController_GetDeliveries(t *testing.T) {
	t.Run("nominal case", func(t *testing.T) {
		rec, ctx := get(t, "/deliveries/:id")
		ctx.SetParamNames("id")
		ctx.SetParamValues(mocks.GenericDeliveryID)
		ledger := mocks.BaselineLedger(t)

		err := rest.NewController(ledger, rest.NewValidator()).GetDeliveries(ctx)

		require.NoError(t, err)
		var res rest.DeliveriesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, mocks.GenericDeliveryID, res.DeliveryID)
		assert.Equal(t, ledger.Deliveries(mocks.GenericDeliveryID), res.Blocks)
	})

	t.Run("unknown delivery", func(t *testing.T) {
		_, ctx := get(t, "/deliveries/:id")
		ctx.SetParamNames("id")
		ctx.SetParamValues("DEL-404")
		ledger := mocks.BaselineLedger(t)
		ledger.DeliveriesFunc = func(string) []proof.Block {
			return nil
		}

		err := rest.NewController(ledger, rest.NewValidator()).GetDeliveries(ctx)

		httpErr, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, httpErr.Code)
	})
}

func TestController_Register(t *testing.T) {
	e := echo.New()
	rest.NewController(mocks.BaselineLedger(t), rest.NewValidator()).Register(e)

	req := httptest.NewRequest(http.MethodGet, "/blocks/1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/blocks/abc", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func get(t *testing.T, path string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	ctx := echo.New().NewContext(req, rec)
	ctx.SetPath(path)

	return rec, ctx
}
