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
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/optakt/proof-ledger/models/proof"
)

// Tags reported by the struct-level validation of submissions.
const (
	tagBlank    = "blank"
	tagReserved = "reserved"
)

// Validator checks submitted requests before they reach the ledger.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a request validator.
func NewValidator() *Validator {

	v := validator.New()

	// Report fields under their JSON names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterStructValidation(submitValidator, SubmitProofRequest{})

	r := Validator{
		validate: v,
	}

	return &r
}

// Request validates the given request. The returned error wraps
// ErrInvalidPayload and names the first offending field.
func (v *Validator) Request(request interface{}) error {

	err := v.validate.Struct(request)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("could not validate request: %w", err)
	}

	return fmt.Errorf("invalid field %s (%s): %w", errs[0].Field(), errs[0].Tag(), proof.ErrInvalidPayload)
}

func submitValidator(sl validator.StructLevel) {
	req := sl.Current().Interface().(SubmitProofRequest)

	fields := []struct {
		name  string
		value string
	}{
		{name: "entityId", value: req.EntityID},
		{name: "deliveryId", value: req.DeliveryID},
		{name: "evidenceLocator", value: req.EvidenceLocator},
	}
	for _, field := range fields {
		if field.value != "" && strings.TrimSpace(field.value) == "" {
			sl.ReportError(field.value, field.name, field.name, tagBlank, "")
		}
	}

	if req.EvidenceLocator == proof.GenesisLocator {
		sl.ReportError(req.EvidenceLocator, "evidenceLocator", "evidenceLocator", tagReserved, "")
	}
}
