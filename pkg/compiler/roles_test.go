// Copyright 2025 UMH Systems GmbH
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

package compiler_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/billyperformance/druid/pkg/compiler"
	"github.com/billyperformance/druid/pkg/config"
)

var _ = Describe("RenderRole", func() {
	var gen *compiler.Generator

	BeforeEach(func() {
		gen = compiler.NewGenerator()
	})

	It("renders a customised broker with a trailing blank line", func() {
		rc := mustRole(config.RoleBroker, config.Params{
			"host":                                 "127.0.0.1",
			"port":                                 int64(8092),
			"service":                              "druid-test/broker",
			"balancer_type":                        "connectionCount",
			"cache_uncacheable":                    []any{"groupBy"},
			"cache_use_cache":                      true,
			"http_num_connections":                 int64(20),
			"http_read_timeout":                    "PT30M",
			"processing_buffer_size_bytes":         int64(2147483648),
			"processing_column_cache_size_bytes":   int64(10),
			"processing_format_string":             "test-processing-%s",
			"processing_num_threads":               int64(2),
			"query_group_by_max_intermediate_rows": int64(50100),
			"query_group_by_max_results":           int64(500100),
			"query_group_by_single_threaded":       true,
			"query_search_max_search_limit":        int64(1001),
			"retry_policy_num_tries":               int64(3),
			"select_tier_custom_priorities":        []any{int64(1), int64(10)},
			"select_tier":                          "lowestPriority",
			"server_http_max_idle_time":            "PT10m",
			"server_http_num_threads":              int64(15),
		})
		Expect(gen.RenderRole(rc)).To(Equal(preamble +
			"# Node Configs\n" +
			"druid.host=127.0.0.1\n" +
			"druid.port=8092\n" +
			"druid.service=druid-test/broker\n" +
			"\n" +
			"# Query Configs\n" +
			"druid.broker.balancer.type=connectionCount\n" +
			"druid.broker.select.tier=lowestPriority\n" +
			"druid.broker.select.tier.custom.priorities=[1,10]\n" +
			"druid.server.http.numThreads=15\n" +
			"druid.server.http.maxIdleTime=PT10m\n" +
			"druid.broker.http.numConnections=20\n" +
			"druid.broker.http.readTimeout=PT30M\n" +
			"druid.broker.retryPolicy.numTries=3\n" +
			"druid.processing.buffer.sizeBytes=2147483648\n" +
			"druid.processing.formatString=test-processing-%s\n" +
			"druid.processing.numThreads=2\n" +
			"druid.processing.columnCache.sizeBytes=10\n" +
			"druid.query.groupBy.singleThreaded=true\n" +
			"druid.query.groupBy.maxIntermediateRows=50100\n" +
			"druid.query.groupBy.maxResults=500100\n" +
			"druid.query.search.maxSearchLimit=1001\n" +
			"\n" +
			"# Caching\n" +
			"druid.broker.cache.useCache=true\n" +
			"druid.broker.cache.populateCache=false\n" +
			"druid.broker.cache.unCacheable=[\"groupBy\"]\n" +
			"\n" +
			"# GroupBy Engine\n" +
			"\n"))
	})

	It("starts the broker file with the host from the facts", func() {
		out := gen.RenderRole(mustRole(config.RoleBroker, nil))
		Expect(out).To(HavePrefix(preamble + "# Node Configs\ndruid.host=127.0.0.1\n"))
		Expect(out).NotTo(ContainSubstring("custom.priorities"))
	})

	It("renders a customised coordinator without a trailing blank line", func() {
		rc := mustRole(config.RoleCoordinator, config.Params{
			"host":                          "127.0.0.1",
			"port":                          int64(8091),
			"service":                       "druid-test/coordinator",
			"conversion_on":                 true,
			"load_timeout":                  "PT17M",
			"manager_config_poll_duration":  "PT2M",
			"manager_rules_alert_threshold": "PT12M",
			"manager_rules_default_tier":    "_test_default",
			"manager_rules_poll_duration":   "PT3M",
			"manager_segment_poll_duration": "PT5M",
			"merge_on":                      true,
			"period":                        "PT62S",
			"period_indexing_period":        "PT1803S",
			"start_delay":                   "PT302S",
		})
		Expect(gen.RenderRole(rc)).To(Equal(preamble +
			"# Node Config\n" +
			"druid.host=127.0.0.1\n" +
			"druid.port=8091\n" +
			"druid.service=druid-test/coordinator\n" +
			"\n" +
			"# Coordinator Operation\n" +
			"druid.coordinator.period=PT62S\n" +
			"druid.coordinator.period.indexingPeriod=PT1803S\n" +
			"druid.coordinator.startDelay=PT302S\n" +
			"druid.coordinator.merge.on=true\n" +
			"druid.coordinator.conversion.on=true\n" +
			"druid.coordinator.load.timeout=PT17M\n" +
			"\n" +
			"# Metadata Retrieval\n" +
			"druid.manager.config.pollDuration=PT2M\n" +
			"druid.manager.segment.pollDuration=PT5M\n" +
			"druid.manager.rules.pollDuration=PT3M\n" +
			"druid.manager.rules.defaultTier=_test_default\n" +
			"druid.manager.rules.alertThreshold=PT12M\n"))
	})

	It("renders the router strategies as a compact array in order", func() {
		rc := mustRole(config.RoleRouter, config.Params{
			"host":    "192.168.0.105",
			"service": "druid-test/router",
		})
		Expect(gen.RenderRole(rc)).To(Equal(preamble +
			"# Node Config\n" +
			"druid.host=192.168.0.105\n" +
			"druid.plaintextPort=8091\n" +
			"druid.service=druid-test/router\n" +
			"\n" +
			"# Router Configs\n" +
			"\n" +
			"druid.router.defaultBrokerServiceName=druid/broker\n" +
			"druid.router.coordinatorServiceName=druid/coordinator\n" +
			"druid.router.defaultRule=_default\n" +
			"druid.router.pollPeriod=PT1M\n" +
			"druid.router.strategies=[{\"type\":\"timeBoundary\"},{\"type\":\"priority\"}]\n" +
			"druid.router.avatica.balancer.type=rendezvousHash\n" +
			"druid.router.managementProxy.enabled=false\n" +
			"druid.router.tierToBrokerMap={\"_default_tier\":\"\"}\n" +
			"druid.router.http.numConnections=5\n" +
			"druid.router.http.readTimeout=PT15M\n" +
			"druid.router.http.numMaxThreads=10\n" +
			"druid.server.http.numThreads=10\n"))
	})

	It("keeps javascript router strategies verbatim", func() {
		fn := "function (config, query) { if (query.getAggregatorSpecs().size() >= 3 && config) { return \"slow\"; } return null; }"
		rc := mustRole(config.RoleRouter, config.Params{
			"strategies": []any{config.NewObject("type", "javascript", "function", fn)},
		})
		Expect(gen.RenderRole(rc)).To(ContainSubstring(
			`druid.router.strategies=[{"type":"javascript","function":"function (config, query) { if (query.getAggregatorSpecs().size() >= 3 && config) { return \"slow\"; } return null; }"}]` + "\n"))
	})

	It("renders historical segment cache locations as inline JSON", func() {
		out := gen.RenderRole(mustRole(config.RoleHistorical, nil))
		Expect(out).To(ContainSubstring("# General Configuration\n" +
			"druid.server.maxSize=10000000000\n" +
			"druid.server.tier=_default_tier\n" +
			"druid.server.priority=0\n" +
			"\n"))
		Expect(out).To(ContainSubstring("druid.segmentCache.locations=[{\"path\":\"/tmp/druid/indexCache\",\"maxSize\":10000000000}]\n"))
		Expect(out).To(HaveSuffix("# Caching\n" +
			"druid.historical.cache.useCache=false\n" +
			"druid.historical.cache.populateCache=false\n"))
	})

	It("emits only the selected overlord runner and storage keys", func() {
		local := gen.RenderRole(mustRole(config.RoleOverlord, nil))
		Expect(local).To(ContainSubstring("druid.indexer.runner.type=local\ndruid.indexer.storage.type=local\n"))
		Expect(local).NotTo(ContainSubstring("minWorkerVersion"))
		Expect(local).NotTo(ContainSubstring("recentlyFinishedThreshold"))

		remote := gen.RenderRole(mustRole(config.RoleOverlord, config.Params{
			"runner_type":          "remote",
			"indexer_storage_type": "metadata",
		}))
		Expect(remote).To(ContainSubstring("druid.indexer.runner.type=remote\n" +
			"druid.indexer.runner.compressZnodes=true\n" +
			"druid.indexer.runner.minWorkerVersion=0\n" +
			"druid.indexer.runner.maxZnodeBytes=524288\n" +
			"druid.indexer.runner.taskAssignmentTimeout=PT5M\n" +
			"druid.indexer.runner.taskCleanupTimeout=PT15M\n" +
			"druid.indexer.storage.type=metadata\n" +
			"druid.indexer.storage.recentlyFinishedThreshold=PT24H\n"))
	})

	It("defaults the middle manager worker ip to the host", func() {
		out := gen.RenderRole(mustRole(config.RoleMiddleManager, config.Params{"host": "10.1.2.3"}))
		Expect(out).To(ContainSubstring("# Worker\ndruid.worker.ip=10.1.2.3\ndruid.worker.version=0\ndruid.worker.capacity=3\n"))
		Expect(out).To(ContainSubstring("druid.indexer.task.defaultHadoopCoordinates=[\"org.apache.hadoop:hadoop-client:2.3.0\"]\n"))
	})
})
