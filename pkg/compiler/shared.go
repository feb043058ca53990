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

func sharedSections(m *config.Model) []properties.Section {
	return []properties.Section{
		{Header: "Extensions", Gap: true, Body: func(b *properties.Block) { writeExtensions(b, m.Extensions) }},
		{Header: "Zookeeper", Gap: true, Body: func(b *properties.Block) { writeZookeeper(b, m.Zookeeper) }},
		{Header: "Request Logging", Gap: true, Body: func(b *properties.Block) { writeRequestLogging(b, m.RequestLogging) }},
		{Header: "Enabling Metrics", Gap: true, Body: func(b *properties.Block) { writeMonitoring(b, m.Monitoring) }},
		{Header: "Emitting Metrics", Gap: true, Body: func(b *properties.Block) { writeEmitter(b, m.Emitter) }},
		{Header: "Metadata Storage", Gap: true, Body: func(b *properties.Block) { writeMetadataStorage(b, m.MetadataStorage) }},
		{Header: "Deep Storage", Gap: true, Body: func(b *properties.Block) { writeDeepStorage(b, m.DeepStorage) }},
		{Header: "Caching", Gap: true, Body: func(b *properties.Block) { writeCache(b, m.Cache) }},
		{Header: "Indexing Service Discovery", Gap: true, Body: func(b *properties.Block) {
			b.Set("druid.selectors.indexing.serviceName", m.Selectors.IndexingServiceName)
		}},
		{Header: "Coordinator Service Discovery", Gap: true, Body: func(b *properties.Block) {
			b.Set("druid.selectors.coordinator.serviceName", m.Selectors.CoordinatorServiceName)
		}},
		{Header: "Logging", Body: func(b *properties.Block) { writeStartupLogging(b, m.StartupLogging) }},
		{Header: "Announcing Segments", Body: func(b *properties.Block) { writeAnnouncer(b, m.Announcer) }},
		{Header: "Task Logging", Body: func(b *properties.Block) { writeTaskLogs(b, m.TaskLogs) }},
	}
}

func writeExtensions(b *properties.Block, e config.ExtensionsConfig) {
	b.Set("druid.extensions.remoteRepositories", properties.SpacedList(e.RemoteRepositories))
	b.Set("druid.extensions.localRepository", e.LocalRepository)
	b.Set("druid.extensions.coordinates", properties.SpacedList(e.Coordinates))
	b.OptString("druid.extensions.defaultVersion", e.DefaultVersion)
	b.Set("druid.extensions.searchCurrentClassloader", properties.Bool(e.SearchCurrentClassloader))
	b.Set("druid.extensions.hadoopDependenciesDir", e.HadoopDependenciesDir)
	if e.LoadList != nil {
		b.Set("druid.extensions.loadList", properties.SpacedList(e.LoadList))
	}
}

func writeZookeeper(b *properties.Block, zk config.ZookeeperConfig) {
	b.Set("druid.zk.paths.base", zk.Paths.Base)
	b.Set("druid.zk.service.host", zk.ServiceHost)
	b.Set("druid.zk.service.sessionTimeoutMs", properties.Int(zk.SessionTimeoutMs))
	b.Set("druid.curator.compress", properties.Bool(zk.CuratorCompress))

	p := zk.Paths
	b.OptString("druid.zk.paths.propertiesPath", p.PropertiesPath)
	b.OptString("druid.zk.paths.announcementsPath", p.AnnouncementsPath)
	b.OptString("druid.zk.paths.liveSegmentsPath", p.LiveSegmentsPath)
	b.OptString("druid.zk.paths.loadQueuePath", p.LoadQueuePath)
	b.OptString("druid.zk.paths.coordinatorPath", p.CoordinatorPath)
	b.OptString("druid.zk.paths.indexer.base", p.IndexerBase)
	b.OptString("druid.zk.paths.indexer.announcementsPath", p.IndexerAnnouncementsPath)
	b.OptString("druid.zk.paths.indexer.tasksPath", p.IndexerTasksPath)
	b.OptString("druid.zk.paths.indexer.statusPath", p.IndexerStatusPath)
	b.OptString("druid.zk.paths.indexer.leaderLatchPath", p.IndexerLeaderLatchPath)

	b.Set("druid.discovery.curator.path", zk.DiscoveryCuratorPath)
}

func writeRequestLogging(b *properties.Block, rl config.RequestLogging) {
	b.Set("druid.request.logging.type", rl.RequestLoggingType())
	switch v := rl.(type) {
	case config.FileRequestLogging:
		b.Set("druid.request.logging.dir", v.Dir)
	case config.EmitterRequestLogging:
		b.Set("druid.request.logging.feed", v.Feed)
	case config.FilteredRequestLogging:
		b.OptInt("druid.request.logging.queryTimeThresholdMs", v.QueryTimeThresholdMs)
		b.OptInt("druid.request.logging.sqlQueryTimeThresholdMs", v.SQLQueryTimeThresholdMs)
		if v.Delegate != nil {
			b.Set("druid.request.logging.delegate", properties.JSON(v.Delegate))
		}
	case config.Slf4jRequestLogging:
		b.OptBool("druid.request.logging.setMDC", v.SetMDC)
		b.OptBool("druid.request.logging.setContextMDC", v.SetContextMDC)
	}
}

func writeMonitoring(b *properties.Block, m config.MonitoringConfig) {
	b.Set("druid.monitoring.emissionPeriod", m.EmissionPeriod)
	if len(m.Monitors) > 0 {
		b.Set("druid.monitoring.monitors", properties.List(m.Monitors))
	}
}

func writeEmitter(b *properties.Block, e config.Emitter) {
	b.Set("druid.emitter", e.EmitterType())
	switch v := e.(type) {
	case config.LoggingEmitter:
		b.Set("druid.emitter.logging.loggerClass", v.LoggerClass)
		b.Set("druid.emitter.logging.logLevel", v.LogLevel)
	case config.HTTPEmitter:
		b.Set("druid.emitter.http.timeOut", v.TimeOut)
		b.Set("druid.emitter.http.flushMillis", properties.Int(v.FlushMillis))
		b.Set("druid.emitter.http.flushCount", properties.Int(v.FlushCount))
		b.Set("druid.emitter.http.recipientBaseUrl", v.RecipientBaseURL)
	case config.GraphiteEmitter:
		b.Set("druid.emitter.graphite.hostname", v.Hostname)
		b.Set("druid.emitter.graphite.port", properties.Int(v.Port))
		b.OptInt("druid.emitter.graphite.batchSize", v.BatchSize)
		if v.EventConverter != nil {
			b.Set("druid.emitter.graphite.eventConverter", properties.JSON(v.EventConverter))
		}
		b.OptInt("druid.emitter.graphite.flushPeriod", v.FlushPeriod)
	case config.ComposingEmitter:
		b.Set("druid.emitter.composing.emitters", properties.List(v.Emitters))
	}
}

func writeMetadataStorage(b *properties.Block, s config.MetadataStorageConfig) {
	b.Set("druid.metadata.storage.type", s.Type)
	b.Set("druid.metadata.storage.connector.connectURI", s.ConnectURI)
	b.Set("druid.metadata.storage.connector.user", s.User)
	b.Set("druid.metadata.storage.connector.password", s.Password)
	b.Set("druid.metadata.storage.connector.createTables", properties.Bool(s.CreateTables))

	t := s.Tables
	b.Set("druid.metadata.storage.tables.base", t.Base)
	b.Set("druid.metadata.storage.tables.segmentTable", t.SegmentTable)
	b.Set("druid.metadata.storage.tables.ruleTable", t.RuleTable)
	b.Set("druid.metadata.storage.tables.configTable", t.ConfigTable)
	b.Set("druid.metadata.storage.tables.tasks", t.Tasks)
	b.Set("druid.metadata.storage.tables.taskLog", t.TaskLog)
	b.Set("druid.metadata.storage.tables.taskLock", t.TaskLock)
	b.Set("druid.metadata.storage.tables.audit", t.Audit)
}

func writeDeepStorage(b *properties.Block, s config.DeepStorage) {
	b.Set("druid.storage.type", s.StorageType())
	switch v := s.(type) {
	case config.LocalStorage:
		b.Set("druid.storage.storageDirectory", v.Directory)
	case config.S3Storage:
		b.OptString("druid.s3.accessKey", v.AccessKey)
		b.OptString("druid.s3.secretKey", v.SecretKey)
		b.Set("druid.storage.bucket", v.Bucket)
		b.OptString("druid.storage.baseKey", v.BaseKey)
		b.Set("druid.storage.disableAcl", properties.Bool(v.DisableACL))
		b.OptString("druid.storage.archiveBucket", v.ArchiveBucket)
		b.OptString("druid.storage.archiveBaseKey", v.ArchiveBaseKey)
	case config.HDFSStorage:
		b.Set("druid.storage.storageDirectory", v.Directory)
	case config.CassandraStorage:
		b.Set("druid.storage.host", v.Host)
		b.Set("druid.storage.keyspace", v.Keyspace)
	}
}

func writeCache(b *properties.Block, c config.Cache) {
	b.Set("druid.cache.type", c.CacheType())
	switch v := c.(type) {
	case config.LocalCache:
		b.Set("druid.cache.sizeInBytes", properties.Int(v.SizeInBytes))
		b.Set("druid.cache.initialSize", properties.Int(v.InitialSize))
		b.Set("druid.cache.logEvictionCount", properties.Int(v.LogEvictionCount))
	case config.MemcachedCache:
		b.Set("druid.cache.expiration", properties.Int(v.Expiration))
		b.Set("druid.cache.timeout", properties.Int(v.Timeout))
		b.Set("druid.cache.hosts", properties.HostList(v.Hosts))
		b.Set("druid.cache.maxObjectSize", properties.Int(v.MaxObjectSize))
		b.Set("druid.cache.memcachedPrefix", v.Prefix)
	case config.CaffeineCache:
		b.Set("druid.cache.sizeInBytes", properties.Int(v.SizeInBytes))
		b.OptInt("druid.cache.expireAfter", v.ExpireAfter)
	}
}

// writeStartupLogging keeps the commented layout Druid ships in its sample
// configuration.
func writeStartupLogging(b *properties.Block, s config.StartupLoggingConfig) {
	b.Comment(" #")
	b.Comment("")
	b.Comment(" # Log all runtime properties on startup. Disable to avoid logging properties on startup:")
	b.Blank()
	b.Set("druid.startup.logging.logProperties", properties.Bool(s.LogProperties))
	b.Comment("")
}

func writeAnnouncer(b *properties.Block, a config.AnnouncerConfig) {
	b.Set("druid.announcer.type", a.Type)
	if a.IsBatch() {
		b.Set("druid.announcer.segmentsPerNode", properties.Int(a.SegmentsPerNode))
		b.Set("druid.announcer.maxBytesPerNode", properties.Int(a.MaxBytesPerNode))
	}
}

func writeTaskLogs(b *properties.Block, t config.TaskLogs) {
	b.Set("druid.indexer.logs.type", t.TaskLogsType())
	switch v := t.(type) {
	case config.FileTaskLogs:
		b.Set("druid.indexer.logs.directory", v.Directory)
	case config.S3TaskLogs:
		b.Set("druid.indexer.logs.s3Bucket", v.Bucket)
		if v.Prefix != "" {
			b.Set("druid.indexer.logs.s3Prefix", v.Prefix)
		}
	case config.HDFSTaskLogs:
		b.Set("druid.indexer.logs.directory", v.Directory)
	}
}
