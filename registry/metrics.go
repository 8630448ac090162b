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

package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type registryMetrics struct {
	operations          *prometheus.CounterVec
	useCases            prometheus.Gauge
	descriptors         prometheus.Gauge
	approvedDescriptors prometheus.Gauge
}

func (m *registryMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.operations = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokenreg_operations_total",
			Help: "registry operations by result",
		},
		[]string{"operation", "result"},
	)
	m.useCases = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "tokenreg_use_cases",
		Help: "number of use cases",
	})
	m.descriptors = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "tokenreg_descriptors",
		Help: "number of live descriptors",
	})
	m.approvedDescriptors = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "tokenreg_descriptors_approved",
		Help: "number of approved descriptors",
	})
}
