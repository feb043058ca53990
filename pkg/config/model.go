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

// Namespace is the Java package prefix of a Druid distribution.
type Namespace string

const (
	NamespaceLegacy Namespace = "io.druid"
	NamespaceModern Namespace = "org.apache.druid"
)

// Model is the validated cluster wide configuration. It is immutable once
// Validate returns it.
type Model struct {
	InstallVersion   string
	PackageNamespace Namespace

	Extensions      ExtensionsConfig
	Zookeeper       ZookeeperConfig
	RequestLogging  RequestLogging
	Monitoring      MonitoringConfig
	Emitter         Emitter
	MetadataStorage MetadataStorageConfig
	DeepStorage     DeepStorage
	Cache           Cache
	Selectors       SelectorsConfig
	StartupLogging  StartupLoggingConfig
	Announcer       AnnouncerConfig
	TaskLogs        TaskLogs
	Log4j           Log4jConfig
}

type ExtensionsConfig struct {
	RemoteRepositories       []string `param:"extensions_remote_repositories"`
	LocalRepository          string   `param:"extensions_local_repository"`
	Coordinates              []string `param:"extensions_coordinates"`
	DefaultVersion           *string  `param:"extensions_default_version"`
	SearchCurrentClassloader bool     `param:"extensions_search_current_classloader"`
	HadoopDependenciesDir    string   `param:"extensions_hadoop_deps_dir"`
	LoadList                 []string `param:"extensions_load_list"`
}

type ZookeeperConfig struct {
	ServiceHost          string `param:"zk_service_host" validate:"required"`
	SessionTimeoutMs     int64  `param:"zk_service_session_timeout_ms" validate:"gt=0"`
	CuratorCompress      bool   `param:"curator_compress"`
	Paths                ZookeeperPaths
	DiscoveryCuratorPath string `param:"discovery_curator_path"`
}

// ZookeeperPaths holds the znode layout. Everything but Base is optional.
type ZookeeperPaths struct {
	Base                     string  `param:"zk_paths_base"`
	PropertiesPath           *string `param:"zk_paths_properties_path"`
	AnnouncementsPath        *string `param:"zk_paths_announcements_path"`
	LiveSegmentsPath         *string `param:"zk_paths_live_segments_path"`
	LoadQueuePath            *string `param:"zk_paths_load_queue_path"`
	CoordinatorPath          *string `param:"zk_paths_coordinator_path"`
	IndexerBase              *string `param:"zk_paths_indexer_base"`
	IndexerAnnouncementsPath *string `param:"zk_paths_indexer_announcements_path"`
	IndexerTasksPath         *string `param:"zk_paths_indexer_tasks_path"`
	IndexerStatusPath        *string `param:"zk_paths_indexer_status_path"`
	IndexerLeaderLatchPath   *string `param:"zk_paths_indexer_leader_latch_path"`
}

type MonitoringConfig struct {
	EmissionPeriod string   `param:"monitoring_emission_period"`
	Monitors       []string `param:"monitoring_monitors"`
}

type MetadataStorageConfig struct {
	Type         string `param:"metadata_storage_type" validate:"oneof=mysql postgresql derby"`
	ConnectURI   string `param:"metadata_storage_connector_uri"`
	User         string `param:"metadata_storage_connector_user"`
	Password     string `param:"metadata_storage_connector_password"`
	CreateTables bool   `param:"metadata_storage_connector_create_tables"`
	Tables       MetadataTables
}

type MetadataTables struct {
	Base         string `param:"metadata_storage_tables_base"`
	SegmentTable string `param:"metadata_storage_tables_segment_table"`
	RuleTable    string `param:"metadata_storage_tables_rule_table"`
	ConfigTable  string `param:"metadata_storage_tables_config_table"`
	Tasks        string `param:"metadata_storage_tables_tasks"`
	TaskLog      string `param:"metadata_storage_tables_task_log"`
	TaskLock     string `param:"metadata_storage_tables_task_lock"`
	Audit        string `param:"metadata_storage_tables_audit"`
}

type SelectorsConfig struct {
	IndexingServiceName    string `param:"selectors_indexing_service_name"`
	CoordinatorServiceName string `param:"selectors_coordinator_service_name"`
}

type StartupLoggingConfig struct {
	LogProperties bool `param:"startup_logging_log_properties"`
}

// AnnouncerConfig describes segment announcement. The per node limits only apply
// to the batch announcer.
type AnnouncerConfig struct {
	Type            string `param:"announcer_type" validate:"oneof=batch legacy"`
	SegmentsPerNode int64  `param:"announcer_segments_per_node" validate:"gt=0"`
	MaxBytesPerNode int64  `param:"announcer_max_bytes_per_node" validate:"gt=0"`
}

// IsBatch reports whether the per node limits are in effect.
func (a AnnouncerConfig) IsBatch() bool {
	return a.Type == "batch"
}

type Log4jConfig struct {
	RootLevel string `param:"log4j_root_level" validate:"oneof=trace debug info warn error fatal off"`
	Pattern   string `param:"log4j_pattern" validate:"required"`
}

// Cache is the tagged union of cache implementations.
type Cache interface {
	CacheType() string
}

type LocalCache struct {
	SizeInBytes      int64
	InitialSize      int64
	LogEvictionCount int64
}

type MemcachedCache struct {
	Expiration    int64
	Timeout       int64
	Hosts         []string
	MaxObjectSize int64
	Prefix        string
}

type CaffeineCache struct {
	SizeInBytes int64
	ExpireAfter *int64
}

func (LocalCache) CacheType() string     { return "local" }
func (MemcachedCache) CacheType() string { return "memcached" }
func (CaffeineCache) CacheType() string  { return "caffeine" }

// DeepStorage is the tagged union of segment deep storage backends.
type DeepStorage interface {
	StorageType() string
}

type LocalStorage struct {
	Directory string
}

type S3Storage struct {
	AccessKey      *string
	SecretKey      *string
	Bucket         string
	BaseKey        *string
	DisableACL     bool
	ArchiveBucket  *string
	ArchiveBaseKey *string
}

type HDFSStorage struct {
	Directory string
}

type CassandraStorage struct {
	Host     string
	Keyspace string
}

func (LocalStorage) StorageType() string     { return "local" }
func (S3Storage) StorageType() string        { return "s3" }
func (HDFSStorage) StorageType() string      { return "hdfs" }
func (CassandraStorage) StorageType() string { return "cassandra" }

// Emitter is the tagged union of metric emitters.
type Emitter interface {
	EmitterType() string
}

type NoopEmitter struct{}

type LoggingEmitter struct {
	LoggerClass string
	LogLevel    string
}

type HTTPEmitter struct {
	TimeOut          string
	FlushMillis      int64
	FlushCount       int64
	RecipientBaseURL string
}

type GraphiteEmitter struct {
	Hostname       string
	Port           int64
	BatchSize      *int64
	EventConverter *Object
	FlushPeriod    *int64
}

type ComposingEmitter struct {
	Emitters []string
}

func (NoopEmitter) EmitterType() string      { return "noop" }
func (LoggingEmitter) EmitterType() string   { return "logging" }
func (HTTPEmitter) EmitterType() string      { return "http" }
func (GraphiteEmitter) EmitterType() string  { return "graphite" }
func (ComposingEmitter) EmitterType() string { return "composing" }

// RequestLogging is the tagged union of query request loggers.
type RequestLogging interface {
	RequestLoggingType() string
}

type NoopRequestLogging struct{}

type FileRequestLogging struct {
	Dir string
}

type EmitterRequestLogging struct {
	Feed string
}

type FilteredRequestLogging struct {
	QueryTimeThresholdMs    *int64
	SQLQueryTimeThresholdMs *int64
	Delegate                *Object
}

type Slf4jRequestLogging struct {
	SetMDC        *bool
	SetContextMDC *bool
}

func (NoopRequestLogging) RequestLoggingType() string     { return "noop" }
func (FileRequestLogging) RequestLoggingType() string     { return "file" }
func (EmitterRequestLogging) RequestLoggingType() string  { return "emitter" }
func (FilteredRequestLogging) RequestLoggingType() string { return "filtered" }
func (Slf4jRequestLogging) RequestLoggingType() string    { return "slf4j" }

// TaskLogs is the tagged union of indexing task log stores.
type TaskLogs interface {
	TaskLogsType() string
}

type FileTaskLogs struct {
	Directory string
}

type S3TaskLogs struct {
	Bucket string
	Prefix string
}

type HDFSTaskLogs struct {
	Directory string
}

type NoopTaskLogs struct{}

func (FileTaskLogs) TaskLogsType() string { return "file" }
func (S3TaskLogs) TaskLogsType() string   { return "s3" }
func (HDFSTaskLogs) TaskLogsType() string { return "hdfs" }
func (NoopTaskLogs) TaskLogsType() string { return "noop" }
