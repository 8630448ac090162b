// Copyright 2025 Blink Labs Software
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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type databaseMetrics struct {
	commits   prometheus.Counter
	rollbacks prometheus.Counter
}

func (m *databaseMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.commits = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "tokenreg_database_commits_total",
		Help: "number of committed read-write database transactions",
	})
	m.rollbacks = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "tokenreg_database_rollbacks_total",
		Help: "number of rolled back database transactions",
	})
}
