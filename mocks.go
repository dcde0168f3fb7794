/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package lendkit

import (
	"context"

	"github.com/pkg/errors"

	"github.com/jerry-enebeli/lendkit/model"
)

// MockLedger is an in-memory Ledger for tests: a fixed account id, a static
// balance snapshot and a parameter map.
type MockLedger struct {
	Account  string
	Balances model.BalanceSnapshot
	Params   map[string]string
}

func (m *MockLedger) AccountID() string {
	return m.Account
}

func (m *MockLedger) BalancesObservation(context.Context) (model.BalanceSnapshot, error) {
	if m.Balances == nil {
		return model.BalanceSnapshot{}, nil
	}
	return m.Balances, nil
}

func (m *MockLedger) Parameter(name string) (string, error) {
	if value, ok := m.Params[name]; ok {
		return value, nil
	}
	return "", errors.Errorf("parameter %q not configured", name)
}
