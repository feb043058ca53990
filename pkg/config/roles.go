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

import "fmt"

// Role names a Druid node type.
type Role string

const (
	RoleBroker        Role = "broker"
	RoleCoordinator   Role = "coordinator"
	RoleHistorical    Role = "historical"
	RoleMiddleManager Role = "middle_manager"
	RoleOverlord      Role = "overlord"
	RoleRouter        Role = "router"
)

// Roles lists every role in install order.
var Roles = []Role{RoleCoordinator, RoleOverlord, RoleHistorical, RoleMiddleManager, RoleBroker, RoleRouter}

// ParseRole maps a role name to a Role.
func ParseRole(name string) (Role, error) {
	for _, r := range Roles {
		if string(r) == name {
			return r, nil
		}
	}
	allowed := make([]string, len(Roles))
	for i, r := range Roles {
		allowed[i] = string(r)
	}
	return "", &EnumViolationError{Param: "role", Value: name, Allowed: allowed}
}

// ServerArg is the argument passed to the Druid main class to start this role.
func (r Role) ServerArg() string {
	if r == RoleMiddleManager {
		return "middleManager"
	}
	return string(r)
}

// DisplayName is the human readable role name used in unit descriptions.
func (r Role) DisplayName() string {
	switch r {
	case RoleBroker:
		return "Broker"
	case RoleCoordinator:
		return "Coordinator"
	case RoleHistorical:
		return "Historical"
	case RoleMiddleManager:
		return "Middle Manager"
	case RoleOverlord:
		return "Overlord"
	case RoleRouter:
		return "Router"
	}
	return fmt.Sprintf("Unknown(%s)", string(r))
}

// NodeConfig holds the settings every role has.
type NodeConfig struct {
	Host    string   `param:"host" validate:"required"`
	Port    int64    `param:"port" validate:"gt=0,lt=65536"`
	Service string   `param:"service" validate:"required"`
	JVMOpts []string `param:"jvm_opts"`
}

// RoleConfig is the validated configuration of one role on one host.
type RoleConfig struct {
	Role Role
	Node NodeConfig
	// Settings holds the role specific part; its concrete type matches Role.
	Settings RoleSettings
}

// RoleSettings is the tagged union of per role settings.
type RoleSettings interface {
	SettingsRole() Role
}

// QueryConfig holds the query processing settings shared by brokers and
// historicals. Every field is optional.
type QueryConfig struct {
	ServerHTTPNumThreads            *int64  `param:"server_http_num_threads" validate:"omitempty,gt=0"`
	ServerHTTPMaxIdleTime           *string `param:"server_http_max_idle_time"`
	ProcessingBufferSizeBytes       *int64  `param:"processing_buffer_size_bytes" validate:"omitempty,gt=0"`
	ProcessingFormatString          *string `param:"processing_format_string"`
	ProcessingNumThreads            *int64  `param:"processing_num_threads" validate:"omitempty,gt=0"`
	ProcessingColumnCacheSizeBytes  *int64  `param:"processing_column_cache_size_bytes" validate:"omitempty,gte=0"`
	QueryGroupBySingleThreaded      *bool   `param:"query_group_by_single_threaded"`
	QueryGroupByMaxIntermediateRows *int64  `param:"query_group_by_max_intermediate_rows" validate:"omitempty,gt=0"`
	QueryGroupByMaxResults          *int64  `param:"query_group_by_max_results" validate:"omitempty,gt=0"`
	QuerySearchMaxSearchLimit       *int64  `param:"query_search_max_search_limit" validate:"omitempty,gt=0"`
}

// GroupByEngineConfig holds the optional groupBy engine tuning keys.
type GroupByEngineConfig struct {
	DefaultStrategy             *string `param:"query_group_by_default_strategy" validate:"omitempty,oneof=v1 v2"`
	BufferGrouperInitialBuckets *int64  `param:"query_group_by_buffer_grouper_initial_buckets" validate:"omitempty,gte=0"`
	MaxMergingDictionarySize    *int64  `param:"query_group_by_max_merging_dictionary_size" validate:"omitempty,gt=0"`
	MaxOnDiskStorage            *int64  `param:"query_group_by_max_on_disk_storage" validate:"omitempty,gte=0"`
}

// NodeCacheConfig controls per node result caching.
type NodeCacheConfig struct {
	UseCache      bool     `param:"cache_use_cache"`
	PopulateCache bool     `param:"cache_populate_cache"`
	UnCacheable   []string `param:"cache_uncacheable"`
}

type BrokerConfig struct {
	BalancerType               string  `param:"balancer_type" validate:"oneof=random connectionCount"`
	SelectTier                 string  `param:"select_tier" validate:"oneof=highestPriority lowestPriority custom"`
	SelectTierCustomPriorities []int64 `param:"select_tier_custom_priorities"`
	HTTPNumConnections         *int64  `param:"http_num_connections" validate:"omitempty,gt=0"`
	HTTPReadTimeout            *string `param:"http_read_timeout"`
	RetryPolicyNumTries        *int64  `param:"retry_policy_num_tries" validate:"omitempty,gt=0"`
	Query                      QueryConfig
	GroupBy                    GroupByEngineConfig
	Cache                      NodeCacheConfig
}

type CoordinatorConfig struct {
	Period                     string `param:"period"`
	PeriodIndexingPeriod       string `param:"period_indexing_period"`
	StartDelay                 string `param:"start_delay"`
	MergeOn                    bool   `param:"merge_on"`
	ConversionOn               bool   `param:"conversion_on"`
	LoadTimeout                string `param:"load_timeout"`
	ManagerConfigPollDuration  string `param:"manager_config_poll_duration"`
	ManagerSegmentPollDuration string `param:"manager_segment_poll_duration"`
	ManagerRulesPollDuration   string `param:"manager_rules_poll_duration"`
	ManagerRulesDefaultTier    string `param:"manager_rules_default_tier"`
	ManagerRulesAlertThreshold string `param:"manager_rules_alert_threshold"`
}

type HistoricalConfig struct {
	ServerMaxSize                      int64     `param:"server_max_size" validate:"gte=0"`
	ServerTier                         string    `param:"server_tier" validate:"required"`
	ServerPriority                     int64     `param:"server_priority"`
	SegmentCacheLocations              []*Object `param:"segment_cache_locations" validate:"min=1"`
	SegmentCacheDeleteOnRemove         bool      `param:"segment_cache_delete_on_remove"`
	SegmentCacheDropSegmentDelayMillis int64     `param:"segment_cache_drop_segment_delay_millis" validate:"gte=0"`
	SegmentCacheInfoDir                *string   `param:"segment_cache_info_dir"`
	SegmentCacheAnnounceIntervalMillis int64     `param:"segment_cache_announce_interval_millis" validate:"gte=0"`
	SegmentCacheNumLoadingThreads      *int64    `param:"segment_cache_num_loading_threads" validate:"omitempty,gt=0"`
	Query                              QueryConfig
	GroupBy                            GroupByEngineConfig
	Cache                              NodeCacheConfig
}

// OverlordRunner is the tagged union of task runners.
type OverlordRunner interface {
	RunnerType() string
}

type LocalRunner struct{}

type RemoteRunner struct {
	CompressZnodes        bool
	MinWorkerVersion      string
	MaxZnodeBytes         int64
	TaskAssignmentTimeout string
	TaskCleanupTimeout    string
}

func (LocalRunner) RunnerType() string  { return "local" }
func (RemoteRunner) RunnerType() string { return "remote" }

// OverlordStorage is the tagged union of task state stores.
type OverlordStorage interface {
	TaskStorageType() string
}

type LocalTaskStorage struct{}

type MetadataTaskStorage struct {
	RecentlyFinishedThreshold string
}

func (LocalTaskStorage) TaskStorageType() string    { return "local" }
func (MetadataTaskStorage) TaskStorageType() string { return "metadata" }

type OverlordConfig struct {
	Runner               OverlordRunner
	Storage              OverlordStorage
	QueueStartDelay      string
	QueueRestartDelay    string
	QueueStorageSyncRate string
	QueueMaxSize         *int64
}

// overlordParams is the flat binding target folded into OverlordConfig.
type overlordParams struct {
	RunnerType                       string `param:"runner_type" validate:"oneof=local remote"`
	RunnerCompressZnodes             bool   `param:"runner_compress_znodes"`
	RunnerMinWorkerVersion           string `param:"runner_min_worker_version"`
	RunnerMaxZnodeBytes              int64  `param:"runner_max_znode_bytes" validate:"gt=0"`
	RunnerTaskAssignmentTimeout      string `param:"runner_task_assignment_timeout"`
	RunnerTaskCleanupTimeout         string `param:"runner_task_cleanup_timeout"`
	StorageType                      string `param:"indexer_storage_type" validate:"oneof=local metadata"`
	StorageRecentlyFinishedThreshold string `param:"indexer_storage_recently_finished_threshold"`
	QueueStartDelay                  string `param:"queue_start_delay"`
	QueueRestartDelay                string `param:"queue_restart_delay"`
	QueueStorageSyncRate             string `param:"queue_storage_sync_rate"`
	QueueMaxSize                     *int64 `param:"queue_max_size" validate:"omitempty,gt=0"`
}

func (p *overlordParams) toConfig() OverlordConfig {
	cfg := OverlordConfig{
		QueueStartDelay:      p.QueueStartDelay,
		QueueRestartDelay:    p.QueueRestartDelay,
		QueueStorageSyncRate: p.QueueStorageSyncRate,
		QueueMaxSize:         p.QueueMaxSize,
	}
	if p.RunnerType == "remote" {
		cfg.Runner = RemoteRunner{
			CompressZnodes:        p.RunnerCompressZnodes,
			MinWorkerVersion:      p.RunnerMinWorkerVersion,
			MaxZnodeBytes:         p.RunnerMaxZnodeBytes,
			TaskAssignmentTimeout: p.RunnerTaskAssignmentTimeout,
			TaskCleanupTimeout:    p.RunnerTaskCleanupTimeout,
		}
	} else {
		cfg.Runner = LocalRunner{}
	}
	if p.StorageType == "metadata" {
		cfg.Storage = MetadataTaskStorage{RecentlyFinishedThreshold: p.StorageRecentlyFinishedThreshold}
	} else {
		cfg.Storage = LocalTaskStorage{}
	}
	return cfg
}

type MiddleManagerConfig struct {
	RunnerAllowedPrefixes         []string `param:"runner_allowed_prefixes"`
	RunnerCompressZnodes          bool     `param:"runner_compress_znodes"`
	RunnerClasspath               *string  `param:"runner_classpath"`
	RunnerJavaCommand             string   `param:"runner_java_command" validate:"required"`
	RunnerJavaOpts                *string  `param:"runner_java_opts"`
	RunnerMaxZnodeBytes           int64    `param:"runner_max_znode_bytes" validate:"gt=0"`
	RunnerStartPort               int64    `param:"runner_start_port" validate:"gt=1023,lt=65536"`
	WorkerIP                      *string  `param:"worker_ip"`
	WorkerVersion                 string   `param:"worker_version"`
	WorkerCapacity                int64    `param:"worker_capacity" validate:"gt=0"`
	TaskBaseDir                   string   `param:"task_base_dir"`
	TaskBaseTaskDir               string   `param:"task_base_task_dir"`
	TaskHadoopWorkingPath         string   `param:"task_hadoop_working_path"`
	TaskDefaultRowFlushBoundary   int64    `param:"task_default_row_flush_boundary" validate:"gt=0"`
	TaskDefaultHadoopCoordinates  []string `param:"task_default_hadoop_coordinates"`
	ForkProcessingNumThreads      *int64   `param:"fork_processing_num_threads" validate:"omitempty,gt=0"`
	ForkProcessingBufferSizeBytes *int64   `param:"fork_processing_buffer_size_bytes" validate:"omitempty,gt=0"`
}

type RouterConfig struct {
	DefaultBrokerServiceName string    `param:"default_broker_service_name"`
	CoordinatorServiceName   string    `param:"coordinator_service_name"`
	DefaultRule              string    `param:"default_rule"`
	PollPeriod               string    `param:"poll_period"`
	Strategies               []*Object `param:"strategies"`
	AvaticaBalancerType      string    `param:"avatica_balancer_type" validate:"oneof=rendezvousHash consistentHash"`
	ManagementProxyEnabled   bool      `param:"management_proxy_enabled"`
	TierToBrokerMap          *Object   `param:"tier_to_broker_map"`
	HTTPNumConnections       int64     `param:"http_num_connections" validate:"gt=0"`
	HTTPReadTimeout          string    `param:"http_read_timeout"`
	HTTPNumMaxThreads        int64     `param:"http_num_max_threads" validate:"gt=0"`
	ServerHTTPNumThreads     int64     `param:"server_http_num_threads" validate:"gt=0"`
}

func (*BrokerConfig) SettingsRole() Role        { return RoleBroker }
func (*CoordinatorConfig) SettingsRole() Role   { return RoleCoordinator }
func (*HistoricalConfig) SettingsRole() Role    { return RoleHistorical }
func (*OverlordConfig) SettingsRole() Role      { return RoleOverlord }
func (*MiddleManagerConfig) SettingsRole() Role { return RoleMiddleManager }
func (*RouterConfig) SettingsRole() Role        { return RoleRouter }
