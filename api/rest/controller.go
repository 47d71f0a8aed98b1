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

package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/optakt/proof-ledger/models/proof"
)

// Controller serves the delivery-proof ledger over HTTP.
type Controller struct {
	ledger   proof.Ledger
	validate *Validator
}

// NewController creates a controller for the given ledger.
func NewController(ledger proof.Ledger, validate *Validator) *Controller {
	c := Controller{
		ledger:   ledger,
		validate: validate,
	}
	return &c
}

// Register adds the controller's routes to the given server.
func (c *Controller) Register(e *echo.Echo) {
	e.POST("/proofs", c.SubmitProof)
	e.GET("/ledger", c.GetLedger)
	e.GET("/ledger/verify", c.GetVerify)
	e.GET("/blocks/:index", c.GetBlock)
	e.GET("/deliveries/:id", c.GetDeliveries)
}

func (c *Controller) SubmitProof(ctx echo.Context) error {

	var req SubmitProofRequest
	err := ctx.Bind(&req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	err = c.validate.Request(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	block, err := c.ledger.Append(req.Payload())
	if errors.Is(err, proof.ErrInvalidPayload) {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return ctx.JSON(http.StatusCreated, block)
}

// GetLedger returns the chain together with the outcome of its verification.
// The chain is cut to the verified length, since blocks appended in between
// were not part of the verification.
func (c *Controller) GetLedger(ctx echo.Context) error {

	report := c.ledger.Verify()
	chain := c.ledger.Chain()
	if uint64(len(chain)) > report.Length {
		chain = chain[:report.Length]
	}

	res := LedgerResponse{
		Chain:             chain,
		IsValid:           report.Valid,
		FirstInvalidIndex: report.FirstInvalid,
	}

	return ctx.JSON(http.StatusOK, res)
}

func (c *Controller) GetVerify(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.ledger.Verify())
}

func (c *Controller) GetBlock(ctx echo.Context) error {

	index, err := strconv.ParseUint(ctx.Param("index"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	block, err := c.ledger.Block(index)
	if errors.Is(err, proof.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return ctx.JSON(http.StatusOK, block)
}

func (c *Controller) GetDeliveries(ctx echo.Context) error {

	deliveryID := ctx.Param("id")
	blocks := c.ledger.Deliveries(deliveryID)
	if len(blocks) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "no proofs for delivery")
	}

	res := DeliveriesResponse{
		DeliveryID: deliveryID,
		Blocks:     blocks,
	}

	return ctx.JSON(http.StatusOK, res)
}
