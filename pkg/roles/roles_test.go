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

package roles_test

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/klauspost/compress/gzip"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/billyperformance/druid/pkg/compiler"
	"github.com/billyperformance/druid/pkg/config"
	"github.com/billyperformance/druid/pkg/roles"
	"github.com/billyperformance/druid/pkg/service/druid"
	"github.com/billyperformance/druid/pkg/service/filesystem"
	"github.com/billyperformance/druid/pkg/service/httpclient"
	"github.com/billyperformance/druid/pkg/service/systemd"
)

var localhost = config.Facts{IPAddress: "127.0.0.1", ProcessorCount: 4}

func execStart(unit string) string {
	for _, line := range strings.Split(unit, "\n") {
		if strings.HasPrefix(line, "ExecStart=") {
			return strings.TrimPrefix(line, "ExecStart=")
		}
	}
	return ""
}

var _ = Describe("Driver", func() {
	var (
		fs        *filesystem.MockFileSystem
		installer *druid.Installer
		generator *compiler.Generator
		model     *config.Model
	)

	BeforeEach(func() {
		var err error
		fs = filesystem.NewMockFileSystem()
		installer = druid.NewInstaller(fs, systemd.NewMockService())
		generator = compiler.NewGenerator()
		model, err = config.Validate(nil)
		Expect(err).NotTo(HaveOccurred())
	})

	render := func(d *roles.Driver, raw config.Params) roles.Rendered {
		GinkgoHelper()
		rc, err := d.Configure(localhost, raw)
		Expect(err).NotTo(HaveOccurred())
		r, err := d.Render(model, rc)
		Expect(err).NotTo(HaveOccurred())
		return r
	}

	It("starts the default broker with the default JVM options", func() {
		r := render(roles.NewBroker(generator, installer), nil)
		Expect(execStart(r.Unit)).To(Equal("/usr/bin/java -server -Xmx25g -Xms25g -XX:NewSize=6g -XX:MaxNewSize=6g -XX:MaxDirectMemorySize=64g " +
			"-Duser.timezone=UTC -Dfile.encoding=UTF-8 -Djava.util.logging.manager=org.apache.logging.log4j.jul.LogManager -Djava.io.tmpdir=/tmp " +
			"-classpath .:/etc/druid/broker/:/etc/druid:/opt/druid/lib/* io.druid.cli.Main server broker"))
		Expect(r.Runtime).To(HavePrefix("# This file is managed by druidctl\n# MODIFICATION WILL BE OVERWRITTEN\n\n# Node Configs\ndruid.host=127.0.0.1\n"))
	})

	It("renders the router with a custom host and service", func() {
		r := render(roles.NewRouter(generator, installer), config.Params{
			"host":    "192.168.0.105",
			"service": "druid-test/router",
		})
		Expect(r.Runtime).To(ContainSubstring("druid.host=192.168.0.105\n"))
		Expect(r.Runtime).To(ContainSubstring("druid.service=druid-test/router\n"))
		Expect(r.Runtime).To(ContainSubstring(`druid.router.strategies=[{"type":"timeBoundary"},{"type":"priority"}]` + "\n"))
		Expect(r.Unit).To(ContainSubstring("Description=Druid Router Node\n"))
	})

	It("starts the middle manager with its server argument", func() {
		r := render(roles.NewMiddleManager(generator, installer), nil)
		Expect(execStart(r.Unit)).To(HaveSuffix("-classpath .:/etc/druid/middle_manager/:/etc/druid:/opt/druid/lib/* io.druid.cli.Main server middleManager"))
	})

	It("uses the modern main class for modern releases", func() {
		var err error
		model, err = config.Validate(config.Params{"version": "0.14.2", "package_name": "org.apache.druid"})
		Expect(err).NotTo(HaveOccurred())
		r := render(roles.NewCoordinator(generator, installer), nil)
		Expect(execStart(r.Unit)).To(HaveSuffix(" org.apache.druid.cli.Main server coordinator"))
	})

	It("keeps custom JVM options verbatim", func() {
		r := render(roles.NewHistorical(generator, installer), config.Params{
			"jvm_opts": []any{"-Xmx1g", "-server", "-Xmx1g"},
		})
		Expect(execStart(r.Unit)).To(HavePrefix("/usr/bin/java -Xmx1g -server -Xmx1g -classpath "))
	})

	It("rejects settings of another role", func() {
		rc, err := roles.NewOverlord(generator, installer).Configure(localhost, nil)
		Expect(err).NotTo(HaveOccurred())
		_, err = roles.NewBroker(generator, installer).Render(model, rc)
		Expect(err).To(MatchError("broker driver cannot render overlord settings"))
	})

	It("has a driver for every role", func() {
		for _, role := range config.Roles {
			d, err := roles.NewDriver(role, generator, installer)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Role()).To(Equal(role))
		}
	})
})

var _ = Describe("Host", func() {
	var (
		fs   *filesystem.MockFileSystem
		sd   *systemd.MockService
		host *roles.Host
		ctx  context.Context
	)

	BeforeEach(func() {
		fs = filesystem.NewMockFileSystem().WithDirectory("/etc/systemd/system")
		sd = systemd.NewMockService()
		installer := druid.NewInstaller(fs, sd)
		host = roles.NewHost(fs, httpclient.NewMockHTTPClient(), installer, localhost).WithoutDistribution()
		ctx = context.Background()
	})

	It("selects roles in install order", func() {
		pf := &config.ParamsFile{RoleOrder: []string{"router", "broker", "coordinator"}}
		selected, err := roles.SelectRoles(pf, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(selected).To(Equal([]config.Role{config.RoleCoordinator, config.RoleBroker, config.RoleRouter}))

		_, err = roles.SelectRoles(pf, []string{"peon"})
		var enumErr *config.EnumViolationError
		Expect(err).To(BeAssignableToTypeOf(enumErr))
	})

	It("installs valid roles and reports invalid ones", func() {
		pf := &config.ParamsFile{
			Druid: config.Params{},
			Roles: map[string]config.Params{
				"broker": {},
				"router": {"port": "not a port"},
			},
		}
		plan, err := host.Plan(pf, []config.Role{config.RoleBroker, config.RoleRouter})
		Expect(err).NotTo(HaveOccurred())
		Expect(plan.Roles).To(HaveLen(1))
		Expect(plan.RoleErrors).To(HaveKey(config.RoleRouter))

		out, err := host.Apply(ctx, plan)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.CommonError).NotTo(HaveOccurred())
		Expect(out.RoleErrors).NotTo(HaveKey(config.RoleBroker))
		Expect(out.Err()).To(MatchError(ContainSubstring("router: invalid router parameters")))

		content, ok := fs.FileContent("/etc/druid/broker/runtime.properties")
		Expect(ok).To(BeTrue())
		Expect(content).To(Equal(plan.Roles[0].Runtime))
		shared, _ := fs.FileContent("/etc/druid/common.runtime.properties")
		Expect(shared).To(Equal(plan.Shared))
		Expect(sd.CallLog()).To(Equal([]string{"enable druid-broker", "start druid-broker"}))
	})

	It("installs the distribution before the roles when asked to", func() {
		var archive bytes.Buffer
		zw := gzip.NewWriter(&archive)
		tw := tar.NewWriter(zw)
		Expect(tw.WriteHeader(&tar.Header{Name: "druid-0.9.2/lib/", Typeflag: tar.TypeDir, Mode: 0755})).To(Succeed())
		Expect(tw.Close()).To(Succeed())
		Expect(zw.Close()).To(Succeed())

		url := "http://static.druid.io/artifacts/releases/druid-0.9.2-bin.tar.gz"
		client := httpclient.NewMockHTTPClient().WithBody(url, archive.Bytes())
		installer := druid.NewInstaller(fs, sd)
		host = roles.NewHost(fs, client, installer, localhost).WithArchiveCache("/var/cache/druid")

		pf := &config.ParamsFile{Druid: config.Params{}, Roles: map[string]config.Params{"broker": {}}}
		plan, err := host.Plan(pf, []config.Role{config.RoleBroker})
		Expect(err).NotTo(HaveOccurred())
		order, err := plan.Catalog.Order()
		Expect(err).NotTo(HaveOccurred())
		Expect(order[0]).To(Equal("Archive[/var/cache/druid/druid-0.9.2-bin.tar.gz]"))

		out, err := host.Apply(ctx, plan)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Err()).NotTo(HaveOccurred())
		Expect(client.Requested).To(Equal([]string{url}))
		target, ok := fs.LinkTarget("/opt/druid")
		Expect(ok).To(BeTrue())
		Expect(target).To(Equal("/opt/druid-0.9.2"))
	})

	It("aborts on invalid cluster parameters", func() {
		pf := &config.ParamsFile{Druid: config.Params{"version": "0.9.2", "package_name": "org.apache.druid"}}
		_, err := host.Plan(pf, nil)
		var compat *config.CompatibilityError
		Expect(err).To(HaveOccurred())
		Expect(errors.As(err, &compat)).To(BeTrue())
	})
})
