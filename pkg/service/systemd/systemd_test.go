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

package systemd_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/billyperformance/druid/pkg/service/filesystem"
	"github.com/billyperformance/druid/pkg/service/systemd"
)

var _ = Describe("RenderUnit", func() {
	It("renders the broker unit byte for byte", func() {
		opts := []string{
			"-server", "-Xmx25g", "-Xms25g", "-XX:NewSize=6g", "-XX:MaxNewSize=6g",
			"-XX:MaxDirectMemorySize=64g", "-Duser.timezone=PDT", "-Dfile.encoding=latin-1",
			"-Djava.util.logging.manager=custom.LogManager", "-Djava.io.tmpdir=/mnt/tmp",
			"-Dcom.sun.management.jmxremote.port=17071",
			"-Dcom.sun.management.jmxremote.authenticate=false",
			"-Dcom.sun.management.jmxremote.ssl=false",
		}
		unit, err := systemd.RenderUnit("Broker", opts, systemd.Classpath("broker"), systemd.MainArgs("io.druid", "broker"))
		Expect(err).NotTo(HaveOccurred())
		Expect(unit).To(Equal("[Unit]\nDescription=Druid Broker Node\n\n[Service]\nType=simple\nStandardOutput=syslog\nStandardError=syslog\nSyslogFacility=daemon\nWorkingDirectory=/opt/druid/\nExecStart=/usr/bin/java -server -Xmx25g -Xms25g -XX:NewSize=6g -XX:MaxNewSize=6g -XX:MaxDirectMemorySize=64g -Duser.timezone=PDT -Dfile.encoding=latin-1 -Djava.util.logging.manager=custom.LogManager -Djava.io.tmpdir=/mnt/tmp -Dcom.sun.management.jmxremote.port=17071 -Dcom.sun.management.jmxremote.authenticate=false -Dcom.sun.management.jmxremote.ssl=false -classpath .:/etc/druid/broker/:/etc/druid:/opt/druid/lib/* io.druid.cli.Main server broker\nSuccessExitStatus=130 143\nRestart=on-failure\n\n[Install]\nWantedBy=multi-user.target\n"))
	})

	It("keeps a single space when there are no JVM options", func() {
		unit, err := systemd.RenderUnit("Middle Manager", nil, systemd.Classpath("middle_manager"), systemd.MainArgs("org.apache.druid", "middleManager"))
		Expect(err).NotTo(HaveOccurred())
		Expect(unit).To(ContainSubstring("\nExecStart=/usr/bin/java -classpath .:/etc/druid/middle_manager/:/etc/druid:/opt/druid/lib/* org.apache.druid.cli.Main server middleManager\n"))
		Expect(unit).To(ContainSubstring("Description=Druid Middle Manager Node\n"))
	})

	It("names units after the role", func() {
		Expect(systemd.UnitName("router")).To(Equal("druid-router"))
		Expect(systemd.UnitPath("router")).To(Equal("/etc/systemd/system/druid-router.service"))
	})
})

var _ = Describe("DefaultService", func() {
	var (
		fs  *filesystem.MockFileSystem
		svc *systemd.DefaultService
		ctx context.Context
	)

	BeforeEach(func() {
		fs = filesystem.NewMockFileSystem()
		svc = systemd.NewDefaultService(fs)
		ctx = context.Background()
	})

	It("issues systemctl verbs", func() {
		Expect(svc.DaemonReload(ctx)).To(Succeed())
		Expect(svc.Enable(ctx, "druid-broker")).To(Succeed())
		Expect(svc.Start(ctx, "druid-broker")).To(Succeed())
		Expect(svc.Restart(ctx, "druid-broker")).To(Succeed())
		Expect(fs.CommandLines()).To(Equal([]string{
			"/bin/systemctl daemon-reload",
			"/bin/systemctl enable druid-broker",
			"/bin/systemctl start druid-broker",
			"/bin/systemctl restart druid-broker",
		}))
	})

	It("treats a reported negative state as false", func() {
		fs.WithCommandResult("/bin/systemctl is-active druid-broker", "inactive\n", errors.New("exit status 3"))
		active, err := svc.IsActive(ctx, "druid-broker")
		Expect(err).NotTo(HaveOccurred())
		Expect(active).To(BeFalse())
	})

	It("reports a positive state", func() {
		fs.WithCommandResult("/bin/systemctl is-enabled druid-broker", "enabled\n", nil)
		enabled, err := svc.IsEnabled(ctx, "druid-broker")
		Expect(err).NotTo(HaveOccurred())
		Expect(enabled).To(BeTrue())
	})

	It("fails when systemctl reports nothing", func() {
		fs.WithCommandResult("/bin/systemctl is-enabled druid-broker", "", errors.New("exec: not found"))
		_, err := svc.IsEnabled(ctx, "druid-broker")
		Expect(errors.Is(err, systemd.ErrSystemctl)).To(BeTrue())
	})

	It("wraps command failures", func() {
		fs.WithCommandResult("/bin/systemctl daemon-reload", "Access denied", errors.New("exit status 1"))
		Expect(svc.DaemonReload(ctx)).To(MatchError(ContainSubstring("Access denied")))
	})
})
