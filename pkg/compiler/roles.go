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

package compiler

import (
	"github.com/billyperformance/druid/pkg/config"
	"github.com/billyperformance/druid/pkg/properties"
)

func roleSections(rc *config.RoleConfig) []properties.Section {
	switch s := rc.Settings.(type) {
	case *config.BrokerConfig:
		return brokerSections(rc.Node, s)
	case *config.CoordinatorConfig:
		return coordinatorSections(rc.Node, s)
	case *config.HistoricalConfig:
		return historicalSections(rc.Node, s)
	case *config.OverlordConfig:
		return overlordSections(rc.Node, s)
	case *config.MiddleManagerConfig:
		return middleManagerSections(rc.Node, s)
	case *config.RouterConfig:
		return routerSections(rc.Node, s)
	}
	return nil
}

func writeNode(b *properties.Block, n config.NodeConfig, portKey string) {
	b.Set("druid.host", n.Host)
	b.Set(portKey, properties.Int(n.Port))
	b.Set("druid.service", n.Service)
}

func writeQuery(b *properties.Block, q config.QueryConfig) {
	b.OptInt("druid.processing.buffer.sizeBytes", q.ProcessingBufferSizeBytes)
	b.OptString("druid.processing.formatString", q.ProcessingFormatString)
	b.OptInt("druid.processing.numThreads", q.ProcessingNumThreads)
	b.OptInt("druid.processing.columnCache.sizeBytes", q.ProcessingColumnCacheSizeBytes)
	b.OptBool("druid.query.groupBy.singleThreaded", q.QueryGroupBySingleThreaded)
	b.OptInt("druid.query.groupBy.maxIntermediateRows", q.QueryGroupByMaxIntermediateRows)
	b.OptInt("druid.query.groupBy.maxResults", q.QueryGroupByMaxResults)
	b.OptInt("druid.query.search.maxSearchLimit", q.QuerySearchMaxSearchLimit)
}

func writeGroupByEngine(b *properties.Block, g config.GroupByEngineConfig) {
	b.OptString("druid.query.groupBy.defaultStrategy", g.DefaultStrategy)
	b.OptInt("druid.query.groupBy.bufferGrouperInitialBuckets", g.BufferGrouperInitialBuckets)
	b.OptInt("druid.query.groupBy.maxMergingDictionarySize", g.MaxMergingDictionarySize)
	b.OptInt("druid.query.groupBy.maxOnDiskStorage", g.MaxOnDiskStorage)
}

func writeNodeCache(b *properties.Block, prefix string, c config.NodeCacheConfig) {
	b.Set(prefix+".useCache", properties.Bool(c.UseCache))
	b.Set(prefix+".populateCache", properties.Bool(c.PopulateCache))
	if c.UnCacheable != nil {
		b.Set(prefix+".unCacheable", properties.List(c.UnCacheable))
	}
}

func brokerSections(n config.NodeConfig, s *config.BrokerConfig) []properties.Section {
	return []properties.Section{
		{Header: "Node Configs", Gap: true, Body: func(b *properties.Block) { writeNode(b, n, "druid.port") }},
		{Header: "Query Configs", Gap: true, Body: func(b *properties.Block) {
			b.Set("druid.broker.balancer.type", s.BalancerType)
			b.Set("druid.broker.select.tier", s.SelectTier)
			if len(s.SelectTierCustomPriorities) > 0 {
				b.Set("druid.broker.select.tier.custom.priorities", properties.IntList(s.SelectTierCustomPriorities))
			}
			b.OptInt("druid.server.http.numThreads", s.Query.ServerHTTPNumThreads)
			b.OptString("druid.server.http.maxIdleTime", s.Query.ServerHTTPMaxIdleTime)
			b.OptInt("druid.broker.http.numConnections", s.HTTPNumConnections)
			b.OptString("druid.broker.http.readTimeout", s.HTTPReadTimeout)
			b.OptInt("druid.broker.retryPolicy.numTries", s.RetryPolicyNumTries)
			writeQuery(b, s.Query)
		}},
		{Header: "Caching", Gap: true, Body: func(b *properties.Block) { writeNodeCache(b, "druid.broker.cache", s.Cache) }},
		{Header: "GroupBy Engine", Gap: true, Body: func(b *properties.Block) { writeGroupByEngine(b, s.GroupBy) }},
	}
}

func coordinatorSections(n config.NodeConfig, s *config.CoordinatorConfig) []properties.Section {
	return []properties.Section{
		{Header: "Node Config", Gap: true, Body: func(b *properties.Block) { writeNode(b, n, "druid.port") }},
		{Header: "Coordinator Operation", Gap: true, Body: func(b *properties.Block) {
			b.Set("druid.coordinator.period", s.Period)
			b.Set("druid.coordinator.period.indexingPeriod", s.PeriodIndexingPeriod)
			b.Set("druid.coordinator.startDelay", s.StartDelay)
			b.Set("druid.coordinator.merge.on", properties.Bool(s.MergeOn))
			b.Set("druid.coordinator.conversion.on", properties.Bool(s.ConversionOn))
			b.Set("druid.coordinator.load.timeout", s.LoadTimeout)
		}},
		{Header: "Metadata Retrieval", Body: func(b *properties.Block) {
			b.Set("druid.manager.config.pollDuration", s.ManagerConfigPollDuration)
			b.Set("druid.manager.segment.pollDuration", s.ManagerSegmentPollDuration)
			b.Set("druid.manager.rules.pollDuration", s.ManagerRulesPollDuration)
			b.Set("druid.manager.rules.defaultTier", s.ManagerRulesDefaultTier)
			b.Set("druid.manager.rules.alertThreshold", s.ManagerRulesAlertThreshold)
		}},
	}
}

func historicalSections(n config.NodeConfig, s *config.HistoricalConfig) []properties.Section {
	return []properties.Section{
		{Header: "Node Config", Gap: true, Body: func(b *properties.Block) { writeNode(b, n, "druid.port") }},
		{Header: "General Configuration", Gap: true, Body: func(b *properties.Block) {
			b.Set("druid.server.maxSize", properties.Int(s.ServerMaxSize))
			b.Set("druid.server.tier", s.ServerTier)
			b.Set("druid.server.priority", properties.Int(s.ServerPriority))
		}},
		{Header: "Storing Segments", Gap: true, Body: func(b *properties.Block) {
			b.Set("druid.segmentCache.locations", properties.JSON(s.SegmentCacheLocations))
			b.Set("druid.segmentCache.deleteOnRemove", properties.Bool(s.SegmentCacheDeleteOnRemove))
			b.Set("druid.segmentCache.dropSegmentDelayMillis", properties.Int(s.SegmentCacheDropSegmentDelayMillis))
			b.OptString("druid.segmentCache.infoDir", s.SegmentCacheInfoDir)
			b.Set("druid.segmentCache.announceIntervalMillis", properties.Int(s.SegmentCacheAnnounceIntervalMillis))
			b.OptInt("druid.segmentCache.numLoadingThreads", s.SegmentCacheNumLoadingThreads)
		}},
		{Header: "Query Configs", Gap: true, Body: func(b *properties.Block) {
			b.OptInt("druid.server.http.numThreads", s.Query.ServerHTTPNumThreads)
			b.OptString("druid.server.http.maxIdleTime", s.Query.ServerHTTPMaxIdleTime)
			writeQuery(b, s.Query)
			writeGroupByEngine(b, s.GroupBy)
		}},
		{Header: "Caching", Body: func(b *properties.Block) { writeNodeCache(b, "druid.historical.cache", s.Cache) }},
	}
}

func overlordSections(n config.NodeConfig, s *config.OverlordConfig) []properties.Section {
	return []properties.Section{
		{Header: "Node Config", Gap: true, Body: func(b *properties.Block) { writeNode(b, n, "druid.port") }},
		{Header: "Overlord Operation", Gap: true, Body: func(b *properties.Block) {
			b.Set("druid.indexer.runner.type", s.Runner.RunnerType())
			if r, ok := s.Runner.(config.RemoteRunner); ok {
				b.Set("druid.indexer.runner.compressZnodes", properties.Bool(r.CompressZnodes))
				b.Set("druid.indexer.runner.minWorkerVersion", r.MinWorkerVersion)
				b.Set("druid.indexer.runner.maxZnodeBytes", properties.Int(r.MaxZnodeBytes))
				b.Set("druid.indexer.runner.taskAssignmentTimeout", r.TaskAssignmentTimeout)
				b.Set("druid.indexer.runner.taskCleanupTimeout", r.TaskCleanupTimeout)
			}
			b.Set("druid.indexer.storage.type", s.Storage.TaskStorageType())
			if st, ok := s.Storage.(config.MetadataTaskStorage); ok {
				b.Set("druid.indexer.storage.recentlyFinishedThreshold", st.RecentlyFinishedThreshold)
			}
		}},
		{Header: "Task Queue", Body: func(b *properties.Block) {
			b.Set("druid.indexer.queue.startDelay", s.QueueStartDelay)
			b.Set("druid.indexer.queue.restartDelay", s.QueueRestartDelay)
			b.Set("druid.indexer.queue.storageSyncRate", s.QueueStorageSyncRate)
			b.OptInt("druid.indexer.queue.maxSize", s.QueueMaxSize)
		}},
	}
}

func middleManagerSections(n config.NodeConfig, s *config.MiddleManagerConfig) []properties.Section {
	return []properties.Section{
		{Header: "Node Config", Gap: true, Body: func(b *properties.Block) { writeNode(b, n, "druid.port") }},
		{Header: "Task Runner", Gap: true, Body: func(b *properties.Block) {
			b.Set("druid.indexer.runner.allowedPrefixes", properties.List(s.RunnerAllowedPrefixes))
			b.Set("druid.indexer.runner.compressZnodes", properties.Bool(s.RunnerCompressZnodes))
			b.OptString("druid.indexer.runner.classpath", s.RunnerClasspath)
			b.Set("druid.indexer.runner.javaCommand", s.RunnerJavaCommand)
			b.OptString("druid.indexer.runner.javaOpts", s.RunnerJavaOpts)
			b.Set("druid.indexer.runner.maxZnodeBytes", properties.Int(s.RunnerMaxZnodeBytes))
			b.Set("druid.indexer.runner.startPort", properties.Int(s.RunnerStartPort))
		}},
		{Header: "Worker", Gap: true, Body: func(b *properties.Block) {
			ip := n.Host
			if s.WorkerIP != nil {
				ip = *s.WorkerIP
			}
			b.Set("druid.worker.ip", ip)
			b.Set("druid.worker.version", s.WorkerVersion)
			b.Set("druid.worker.capacity", properties.Int(s.WorkerCapacity))
		}},
		{Header: "Peon", Body: func(b *properties.Block) {
			b.Set("druid.indexer.task.baseDir", s.TaskBaseDir)
			b.Set("druid.indexer.task.baseTaskDir", s.TaskBaseTaskDir)
			b.Set("druid.indexer.task.hadoopWorkingPath", s.TaskHadoopWorkingPath)
			b.Set("druid.indexer.task.defaultRowFlushBoundary", properties.Int(s.TaskDefaultRowFlushBoundary))
			b.Set("druid.indexer.task.defaultHadoopCoordinates", properties.List(s.TaskDefaultHadoopCoordinates))
			b.OptInt("druid.indexer.fork.property.druid.processing.numThreads", s.ForkProcessingNumThreads)
			b.OptInt("druid.indexer.fork.property.druid.processing.buffer.sizeBytes", s.ForkProcessingBufferSizeBytes)
		}},
	}
}

func routerSections(n config.NodeConfig, s *config.RouterConfig) []properties.Section {
	return []properties.Section{
		{Header: "Node Config", Gap: true, Body: func(b *properties.Block) { writeNode(b, n, "druid.plaintextPort") }},
		{Header: "Router Configs", Body: func(b *properties.Block) {
			b.Blank()
			b.Set("druid.router.defaultBrokerServiceName", s.DefaultBrokerServiceName)
			b.Set("druid.router.coordinatorServiceName", s.CoordinatorServiceName)
			b.Set("druid.router.defaultRule", s.DefaultRule)
			b.Set("druid.router.pollPeriod", s.PollPeriod)
			b.Set("druid.router.strategies", properties.JSON(s.Strategies))
			b.Set("druid.router.avatica.balancer.type", s.AvaticaBalancerType)
			b.Set("druid.router.managementProxy.enabled", properties.Bool(s.ManagementProxyEnabled))
			tierMap := s.TierToBrokerMap
			if tierMap == nil {
				tierMap = &config.Object{}
			}
			b.Set("druid.router.tierToBrokerMap", properties.JSON(tierMap))
			b.Set("druid.router.http.numConnections", properties.Int(s.HTTPNumConnections))
			b.Set("druid.router.http.readTimeout", s.HTTPReadTimeout)
			b.Set("druid.router.http.numMaxThreads", properties.Int(s.HTTPNumMaxThreads))
			b.Set("druid.server.http.numThreads", properties.Int(s.ServerHTTPNumThreads))
		}},
	}
}
