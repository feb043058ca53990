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

package config

// installParams is the flat binding target for cluster wide parameters. Union
// members are collected here and folded into typed variants by toModel.
type installParams struct {
	Version     string `param:"version" validate:"required"`
	PackageName string `param:"package_name" validate:"oneof=io.druid org.apache.druid"`

	Extensions      ExtensionsConfig
	Zookeeper       ZookeeperConfig
	RequestLogging  requestLoggingParams
	Monitoring      MonitoringConfig
	Emitter         emitterParams
	MetadataStorage MetadataStorageConfig
	DeepStorage     deepStorageParams
	Cache           cacheParams
	Selectors       SelectorsConfig
	StartupLogging  StartupLoggingConfig
	Announcer       AnnouncerConfig
	TaskLogs        taskLogParams
	Log4j           Log4jConfig
}

type requestLoggingParams struct {
	Type                    string  `param:"request_logging_type" validate:"oneof=noop file emitter filtered slf4j"`
	Dir                     *string `param:"request_logging_dir"`
	Feed                    *string `param:"request_logging_feed"`
	QueryTimeThresholdMs    *int64  `param:"request_logging_query_time_threshold_ms" validate:"omitempty,gte=0"`
	SQLQueryTimeThresholdMs *int64  `param:"request_logging_sql_query_time_threshold_ms" validate:"omitempty,gte=0"`
	DelegateType            *Object `param:"request_logging_delegate_type"`
	SetMDC                  *bool   `param:"request_logging_set_mdc"`
	SetContextMDC           *bool   `param:"request_logging_set_context_mdc"`
}

type emitterParams struct {
	Type                   string   `param:"emitter" validate:"oneof=noop logging http graphite composing"`
	LoggingLoggerClass     string   `param:"emitter_logging_logger_class"`
	LoggingLogLevel        string   `param:"emitter_logging_log_level" validate:"oneof=debug info warn error"`
	HTTPTimeOut            string   `param:"emitter_http_time_out"`
	HTTPFlushMillis        int64    `param:"emitter_http_flush_millis" validate:"gt=0"`
	HTTPFlushCount         int64    `param:"emitter_http_flush_count" validate:"gt=0"`
	HTTPRecipientBaseURL   *string  `param:"emitter_http_recipient_base_url"`
	GraphiteHostname       *string  `param:"emitter_graphite_hostname"`
	GraphitePort           *int64   `param:"emitter_graphite_port" validate:"omitempty,gt=0,lt=65536"`
	GraphiteBatchSize      *int64   `param:"emitter_graphite_batchSize" validate:"omitempty,gt=0"`
	GraphiteEventConverter *Object  `param:"emitter_graphite_eventConverter"`
	GraphiteFlushPeriod    *int64   `param:"emitter_graphite_flushPeriod" validate:"omitempty,gt=0"`
	ComposingEmitters      []string `param:"emitter_composing_emitters"`
}

type deepStorageParams struct {
	Type              string  `param:"storage_type" validate:"oneof=local s3 hdfs cassandra"`
	Directory         string  `param:"storage_directory"`
	S3AccessKey       *string `param:"s3_access_key"`
	S3SecretKey       *string `param:"s3_secret_key"`
	S3Bucket          *string `param:"s3_bucket"`
	S3BaseKey         *string `param:"s3_base_key"`
	DisableACL        bool    `param:"storage_disable_acl"`
	S3ArchiveBucket   *string `param:"s3_archive_bucket"`
	S3ArchiveBaseKey  *string `param:"s3_archive_base_key"`
	HDFSDirectory     *string `param:"hdfs_directory"`
	CassandraHost     *string `param:"cassandra_host"`
	CassandraKeyspace *string `param:"cassandra_keyspace"`
}

type cacheParams struct {
	Type             string   `param:"cache_type" validate:"oneof=local memcached caffeine"`
	SizeInBytes      int64    `param:"cache_size_in_bytes" validate:"gte=0"`
	InitialSize      int64    `param:"cache_initial_size" validate:"gte=0"`
	LogEvictionCount int64    `param:"cache_log_eviction_count" validate:"gte=0"`
	Expiration       int64    `param:"cache_expiration" validate:"gte=0"`
	Timeout          int64    `param:"cache_timeout" validate:"gte=0"`
	Hosts            []string `param:"cache_hosts"`
	MaxObjectSize    int64    `param:"cache_max_object_size" validate:"gt=0"`
	MemcachedPrefix  string   `param:"cache_memcached_prefix"`
	ExpireAfter      *int64   `param:"cache_expire_after" validate:"omitempty,gt=0"`
}

type taskLogParams struct {
	Type      string  `param:"indexer_logs_type" validate:"oneof=file s3 hdfs noop"`
	Directory string  `param:"indexer_logs_directory"`
	S3Bucket  *string `param:"indexer_logs_s3_bucket"`
	S3Prefix  *string `param:"indexer_logs_s3_prefix"`
}

// toModel folds the bound parameters into the immutable model. Missing union
// members are reported as RequiredFieldMissingError.
func (p *installParams) toModel() (*Model, ValidationErrors) {
	var errs ValidationErrors
	require := func(value *string, param, variant string) string {
		if value == nil || *value == "" {
			errs = append(errs, &RequiredFieldMissingError{Param: param, Context: variant})
			return ""
		}
		return *value
	}

	m := &Model{
		InstallVersion:   p.Version,
		PackageNamespace: Namespace(p.PackageName),
		Extensions:       p.Extensions,
		Zookeeper:        p.Zookeeper,
		Monitoring:       p.Monitoring,
		MetadataStorage:  p.MetadataStorage,
		Selectors:        p.Selectors,
		StartupLogging:   p.StartupLogging,
		Announcer:        p.Announcer,
		Log4j:            p.Log4j,
	}

	rl := p.RequestLogging
	switch rl.Type {
	case "noop":
		m.RequestLogging = NoopRequestLogging{}
	case "file":
		m.RequestLogging = FileRequestLogging{Dir: require(rl.Dir, "request_logging_dir", "file request logging")}
	case "emitter":
		m.RequestLogging = EmitterRequestLogging{Feed: require(rl.Feed, "request_logging_feed", "emitter request logging")}
	case "filtered":
		if rl.DelegateType == nil {
			errs = append(errs, &RequiredFieldMissingError{Param: "request_logging_delegate_type", Context: "filtered request logging"})
		}
		m.RequestLogging = FilteredRequestLogging{
			QueryTimeThresholdMs:    rl.QueryTimeThresholdMs,
			SQLQueryTimeThresholdMs: rl.SQLQueryTimeThresholdMs,
			Delegate:                rl.DelegateType,
		}
	case "slf4j":
		m.RequestLogging = Slf4jRequestLogging{SetMDC: rl.SetMDC, SetContextMDC: rl.SetContextMDC}
	}

	em := p.Emitter
	switch em.Type {
	case "noop":
		m.Emitter = NoopEmitter{}
	case "logging":
		m.Emitter = LoggingEmitter{LoggerClass: em.LoggingLoggerClass, LogLevel: em.LoggingLogLevel}
	case "http":
		m.Emitter = HTTPEmitter{
			TimeOut:          em.HTTPTimeOut,
			FlushMillis:      em.HTTPFlushMillis,
			FlushCount:       em.HTTPFlushCount,
			RecipientBaseURL: require(em.HTTPRecipientBaseURL, "emitter_http_recipient_base_url", "http emitter"),
		}
	case "graphite":
		g := GraphiteEmitter{
			Hostname:       require(em.GraphiteHostname, "emitter_graphite_hostname", "graphite emitter"),
			BatchSize:      em.GraphiteBatchSize,
			EventConverter: em.GraphiteEventConverter,
			FlushPeriod:    em.GraphiteFlushPeriod,
		}
		if em.GraphitePort == nil {
			errs = append(errs, &RequiredFieldMissingError{Param: "emitter_graphite_port", Context: "graphite emitter"})
		} else {
			g.Port = *em.GraphitePort
		}
		m.Emitter = g
	case "composing":
		if len(em.ComposingEmitters) == 0 {
			errs = append(errs, &RequiredFieldMissingError{Param: "emitter_composing_emitters", Context: "composing emitter"})
		}
		m.Emitter = ComposingEmitter{Emitters: em.ComposingEmitters}
	}

	ds := p.DeepStorage
	switch ds.Type {
	case "local":
		m.DeepStorage = LocalStorage{Directory: ds.Directory}
	case "s3":
		m.DeepStorage = S3Storage{
			AccessKey:      ds.S3AccessKey,
			SecretKey:      ds.S3SecretKey,
			Bucket:         require(ds.S3Bucket, "s3_bucket", "s3 deep storage"),
			BaseKey:        ds.S3BaseKey,
			DisableACL:     ds.DisableACL,
			ArchiveBucket:  ds.S3ArchiveBucket,
			ArchiveBaseKey: ds.S3ArchiveBaseKey,
		}
	case "hdfs":
		m.DeepStorage = HDFSStorage{Directory: require(ds.HDFSDirectory, "hdfs_directory", "hdfs deep storage")}
	case "cassandra":
		m.DeepStorage = CassandraStorage{
			Host:     require(ds.CassandraHost, "cassandra_host", "cassandra deep storage"),
			Keyspace: require(ds.CassandraKeyspace, "cassandra_keyspace", "cassandra deep storage"),
		}
	}

	c := p.Cache
	switch c.Type {
	case "local":
		m.Cache = LocalCache{SizeInBytes: c.SizeInBytes, InitialSize: c.InitialSize, LogEvictionCount: c.LogEvictionCount}
	case "memcached":
		if len(c.Hosts) == 0 {
			errs = append(errs, &RequiredFieldMissingError{Param: "cache_hosts", Context: "memcached cache"})
		}
		m.Cache = MemcachedCache{
			Expiration:    c.Expiration,
			Timeout:       c.Timeout,
			Hosts:         c.Hosts,
			MaxObjectSize: c.MaxObjectSize,
			Prefix:        c.MemcachedPrefix,
		}
	case "caffeine":
		m.Cache = CaffeineCache{SizeInBytes: c.SizeInBytes, ExpireAfter: c.ExpireAfter}
	}

	tl := p.TaskLogs
	switch tl.Type {
	case "file":
		m.TaskLogs = FileTaskLogs{Directory: tl.Directory}
	case "s3":
		s3 := S3TaskLogs{Bucket: require(tl.S3Bucket, "indexer_logs_s3_bucket", "s3 task logs")}
		if tl.S3Prefix != nil {
			s3.Prefix = *tl.S3Prefix
		}
		m.TaskLogs = s3
	case "hdfs":
		m.TaskLogs = HDFSTaskLogs{Directory: tl.Directory}
	case "noop":
		m.TaskLogs = NoopTaskLogs{}
	}

	return m, errs
}
