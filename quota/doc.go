// Copyright 2025 Poiesic Systems
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


// Package quota admits or rejects tenant requests against plan limits.
//
// The Ledger keeps three counters per tenant: a rolling minute window,
// a rolling hour window and a calendar-month total. Windows live in a
// CounterStore as expiring buckets, so past windows clean themselves up
// without a sweeper. Counter store failures admit the request rather
// than blocking tenants on quota bookkeeping.
package quota
