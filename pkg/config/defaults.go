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

// Facts describes the host a role is installed on.
type Facts struct {
	IPAddress      string
	ProcessorCount int
}

// DefaultInstallParams returns the cluster wide defaults.
func DefaultInstallParams() Params {
	return Params{
		"version":      "0.9.2",
		"package_name": string(NamespaceLegacy),

		"extensions_remote_repositories": []any{
			"http://repo1.maven.org/maven2/",
			"https://metamx.artifactoryonline.com/metamx/pub-libs-releases-local",
		},
		"extensions_local_repository":           "~/.m2/repository",
		"extensions_coordinates":                []any{},
		"extensions_search_current_classloader": true,
		"extensions_hadoop_deps_dir":            "/opt/druid/hadoop-dependencies",

		"zk_paths_base":                 "/druid",
		"zk_service_host":               "localhost",
		"zk_service_session_timeout_ms": int64(30000),
		"curator_compress":              true,
		"discovery_curator_path":        "/druid/discovery",

		"request_logging_type": "noop",

		"monitoring_emission_period": "PT1m",
		"monitoring_monitors":        []any{},

		"emitter":                      "logging",
		"emitter_logging_logger_class": "LoggingEmitter",
		"emitter_logging_log_level":    "info",
		"emitter_http_time_out":        "PT5M",
		"emitter_http_flush_millis":    int64(60000),
		"emitter_http_flush_count":     int64(500),

		"metadata_storage_type":                    "mysql",
		"metadata_storage_connector_uri":           "jdbc:mysql://localhost:3306/druid?characterEncoding=UTF-8",
		"metadata_storage_connector_user":          "druid",
		"metadata_storage_connector_password":      "insecure_pass",
		"metadata_storage_connector_create_tables": true,
		"metadata_storage_tables_base":             "druid",
		"metadata_storage_tables_segment_table":    "druid_segments",
		"metadata_storage_tables_rule_table":       "druid_rules",
		"metadata_storage_tables_config_table":     "druid_config",
		"metadata_storage_tables_tasks":            "druid_tasks",
		"metadata_storage_tables_task_log":         "druid_taskLog",
		"metadata_storage_tables_task_lock":        "druid_taskLock",
		"metadata_storage_tables_audit":            "druid_audit",

		"storage_type":        "local",
		"storage_directory":   "/tmp/druid/localStorage",
		"storage_disable_acl": false,

		"cache_type":               "local",
		"cache_size_in_bytes":      int64(0),
		"cache_initial_size":       int64(500000),
		"cache_log_eviction_count": int64(0),
		"cache_expiration":         int64(2592000),
		"cache_timeout":            int64(500),
		"cache_hosts":              []any{},
		"cache_max_object_size":    int64(52428800),
		"cache_memcached_prefix":   "druid",

		"selectors_indexing_service_name":    "druid/overlord",
		"selectors_coordinator_service_name": "druid/coordinator",

		"startup_logging_log_properties": true,

		"announcer_type":               "batch",
		"announcer_segments_per_node":  int64(50),
		"announcer_max_bytes_per_node": int64(524288),

		"indexer_logs_type":      "file",
		"indexer_logs_directory": "/var/log",

		"log4j_root_level": "info",
		"log4j_pattern":    "%d{ISO8601} %p [%t] %c - %m%n",
	}
}

func commonJVMOpts(heap string, extra ...string) []any {
	opts := []any{"-server", "-Xmx" + heap, "-Xms" + heap}
	for _, e := range extra {
		opts = append(opts, e)
	}
	return append(opts,
		"-Duser.timezone=UTC",
		"-Dfile.encoding=UTF-8",
		"-Djava.util.logging.manager=org.apache.logging.log4j.jul.LogManager",
		"-Djava.io.tmpdir=/tmp",
	)
}

// DefaultRoleParams returns the defaults of one role on a host described by facts.
func DefaultRoleParams(role Role, facts Facts) (Params, error) {
	host := facts.IPAddress
	if host == "" {
		host = "localhost"
	}
	node := Params{"host": host}

	var p Params
	switch role {
	case RoleBroker:
		p = Params{
			"port":                 int64(8082),
			"service":              "druid/broker",
			"jvm_opts":             commonJVMOpts("25g", "-XX:NewSize=6g", "-XX:MaxNewSize=6g", "-XX:MaxDirectMemorySize=64g"),
			"balancer_type":        "random",
			"select_tier":          "highestPriority",
			"cache_use_cache":      false,
			"cache_populate_cache": false,
		}
	case RoleCoordinator:
		p = Params{
			"port":                          int64(8081),
			"service":                       "druid/coordinator",
			"jvm_opts":                      commonJVMOpts("10g", "-XX:NewSize=512m", "-XX:MaxNewSize=512m"),
			"period":                        "PT60S",
			"period_indexing_period":        "PT1800S",
			"start_delay":                   "PT300S",
			"merge_on":                      false,
			"conversion_on":                 false,
			"load_timeout":                  "PT15M",
			"manager_config_poll_duration":  "PT1M",
			"manager_segment_poll_duration": "PT1M",
			"manager_rules_poll_duration":   "PT1M",
			"manager_rules_default_tier":    "_default",
			"manager_rules_alert_threshold": "PT10M",
		}
	case RoleHistorical:
		p = Params{
			"port":            int64(8083),
			"service":         "druid/historical",
			"jvm_opts":        commonJVMOpts("12g", "-XX:MaxDirectMemorySize=32g"),
			"server_max_size": int64(10000000000),
			"server_tier":     "_default_tier",
			"server_priority": int64(0),
			"segment_cache_locations": []any{
				NewObject("path", "/tmp/druid/indexCache", "maxSize", int64(10000000000)),
			},
			"segment_cache_delete_on_remove":          true,
			"segment_cache_drop_segment_delay_millis": int64(30000),
			"segment_cache_announce_interval_millis":  int64(5000),
			"cache_use_cache":                         false,
			"cache_populate_cache":                    false,
		}
	case RoleOverlord:
		p = Params{
			"port":                                        int64(8090),
			"service":                                     "druid/overlord",
			"jvm_opts":                                    commonJVMOpts("3g"),
			"runner_type":                                 "local",
			"runner_compress_znodes":                      true,
			"runner_min_worker_version":                   "0",
			"runner_max_znode_bytes":                      int64(524288),
			"runner_task_assignment_timeout":              "PT5M",
			"runner_task_cleanup_timeout":                 "PT15M",
			"indexer_storage_type":                        "local",
			"indexer_storage_recently_finished_threshold": "PT24H",
			"queue_start_delay":                           "PT1M",
			"queue_restart_delay":                         "PT30S",
			"queue_storage_sync_rate":                     "PT1M",
		}
	case RoleMiddleManager:
		capacity := facts.ProcessorCount - 1
		if capacity < 1 {
			capacity = 1
		}
		p = Params{
			"port":     int64(8091),
			"service":  "druid/middlemanager",
			"jvm_opts": commonJVMOpts("64m"),
			"runner_allowed_prefixes": []any{
				"com.metamx", "druid", "io.druid", "org.apache.druid",
				"user.timezone", "file.encoding", "java.io.tmpdir", "hadoop",
			},
			"runner_compress_znodes":          true,
			"runner_java_command":             "java",
			"runner_max_znode_bytes":          int64(524288),
			"runner_start_port":               int64(8100),
			"worker_version":                  "0",
			"worker_capacity":                 int64(capacity),
			"task_base_dir":                   "/tmp",
			"task_base_task_dir":              "/tmp/persistent/tasks",
			"task_hadoop_working_path":        "/tmp/druid-indexing",
			"task_default_row_flush_boundary": int64(75000),
			"task_default_hadoop_coordinates": []any{"org.apache.hadoop:hadoop-client:2.3.0"},
		}
	case RoleRouter:
		p = Params{
			"port":                        int64(8091),
			"service":                     "druid/router",
			"jvm_opts":                    commonJVMOpts("1g"),
			"default_broker_service_name": "druid/broker",
			"coordinator_service_name":    "druid/coordinator",
			"default_rule":                "_default",
			"poll_period":                 "PT1M",
			"strategies": []any{
				NewObject("type", "timeBoundary"),
				NewObject("type", "priority"),
			},
			"avatica_balancer_type":    "rendezvousHash",
			"management_proxy_enabled": false,
			"tier_to_broker_map":       NewObject("_default_tier", ""),
			"http_num_connections":     int64(5),
			"http_read_timeout":        "PT15M",
			"http_num_max_threads":     int64(10),
			"server_http_num_threads":  int64(10),
		}
	default:
		return nil, fmt.Errorf("no defaults for role %q", string(role))
	}
	return Merge(node, p), nil
}
