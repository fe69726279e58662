package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BindFlags registers the appliance's CLI surface onto fs and binds
// each flag into v under its own flag name (e.g. "sip-port"), the keys
// FromViper reads back, following firestige-Otus's viper-over-cobra
// flag binding convention.
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) {
	d := Default()

	fs.String("ip", d.BindIP, "bind address for all services")
	fs.Bool("terminal", d.Terminal, "headless (no GUI)")
	fs.Bool("debug", d.Debug, "enable debug logging")
	fs.String("log", "", "general log file path (default: stdout)")
	fs.String("metrics-addr", d.MetricsAddr, "debug/metrics HTTP listen address")

	fs.Int("sip-port", d.SIP.Port, "SIP UDP port")
	fs.Bool("sip-redirect", d.SIP.Redirect, "act as a redirect server instead of a proxy")
	fs.Int("sip-expires", d.SIP.DefaultExpires, "default REGISTER expiry in seconds")
	fs.String("sip-password", d.SIP.Password, "shared digest password")
	fs.String("sip-exposed-ip", "", "Record-Route authority IP (default: bind address)")
	fs.Int("sip-exposed-port", 0, "Record-Route authority port (default: sip-port)")
	fs.Bool("sip-no-record-route", false, "suppress Record-Route insertion")
	fs.String("sip-log", "", "SIP message transcript path (default: stdout)")

	fs.Bool("dhcp", d.DHCP.Enabled, "enable the DHCP server")
	fs.String("dhcp-offer-from", "", "DHCP pool start address")
	fs.String("dhcp-offer-to", "", "DHCP pool end address")
	fs.String("dhcp-subnet-mask", "", "DHCP option 1 subnet mask")
	fs.String("dhcp-router", "", "DHCP option 3 router (omitted if unset)")
	fs.String("dhcp-dns", "", "DHCP option 6 DNS server (omitted if unset)")
	fs.String("dhcp-broadcast", d.DHCP.Broadcast, "DHCP reply broadcast address")
	fs.String("dhcp-fileserver", "", "DHCP option 66 TFTP/boot server")
	fs.String("dhcp-filename", "", "DHCP option 67 boot file name")
	fs.String("dhcp-leases-file", d.DHCP.LeasesFile, "DHCP lease persistence file")

	_ = v.BindPFlags(fs)
}

// FromViper decodes v into a Config seeded with Default(); Validate
// fills in the "exposed ip/port defaults to bind addr/port" rule.
func FromViper(v *viper.Viper) (Config, error) {
	c := Default()

	c.BindIP = v.GetString("ip")
	c.Terminal = v.GetBool("terminal")
	c.Debug = v.GetBool("debug")
	c.LogPath = v.GetString("log")
	c.MetricsAddr = v.GetString("metrics-addr")

	c.SIP.BindIP = c.BindIP
	c.SIP.Port = v.GetInt("sip-port")
	c.SIP.Redirect = v.GetBool("sip-redirect")
	c.SIP.DefaultExpires = v.GetInt("sip-expires")
	c.SIP.Password = v.GetString("sip-password")
	c.SIP.ExposedIP = v.GetString("sip-exposed-ip")
	c.SIP.ExposedPort = v.GetInt("sip-exposed-port")
	c.SIP.NoRecordRoute = v.GetBool("sip-no-record-route")
	c.SIP.TranscriptLogPath = v.GetString("sip-log")

	c.DHCP.Enabled = v.GetBool("dhcp")
	c.DHCP.BindIP = "0.0.0.0"
	c.DHCP.OfferFrom = v.GetString("dhcp-offer-from")
	c.DHCP.OfferTo = v.GetString("dhcp-offer-to")
	c.DHCP.SubnetMask = v.GetString("dhcp-subnet-mask")
	c.DHCP.Router = v.GetString("dhcp-router")
	c.DHCP.DNSServer = v.GetString("dhcp-dns")
	c.DHCP.Broadcast = v.GetString("dhcp-broadcast")
	c.DHCP.FileServer = v.GetString("dhcp-fileserver")
	c.DHCP.FileName = v.GetString("dhcp-filename")
	c.DHCP.LeasesFile = v.GetString("dhcp-leases-file")

	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return c, nil
}
