package main

import (
	"context"
	"fmt"

	"github.com/miekg/dns"
	"github.com/spf13/cobra"

	"github.com/nsmithuk/resolver"
	"github.com/nsmithuk/resolver/dnssec"
)

var upstreamAddr string

var validateCmd = &cobra.Command{
	Use:   "validate <domain> [type]",
	Short: "sends one query through the validator and prints the outcome",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&upstreamAddr, "upstream", "", "upstream resolver IP address (overrides the config file's upstream)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	qname := dns.Fqdn(args[0])

	qtype := dns.TypeA
	if len(args) == 2 {
		qtype = dns.StringToType[args[1]]
		if qtype == dns.TypeNone {
			return fmt.Errorf("unknown query type %q", args[1])
		}
	}

	fileCfg := loadFileConfig()
	dnssecCfg, err := fileCfg.DNSSECConfig()
	if err != nil {
		return err
	}

	addr := upstreamAddr
	if addr == "" {
		addr = fileCfg.Upstream
	}
	if addr == "" {
		addr = "1.1.1.1"
	}

	r := resolver.NewResolverFromConfig(addr, addr, dnssecCfg)

	query := new(dns.Msg)
	query.SetQuestion(qname, qtype)
	query.SetEdns0(4096, true)

	resp := r.Exchange(context.Background(), query)
	if resp.Error() {
		return resp.Err
	}

	fmt.Printf("rcode:    %s\n", resolver.RcodeToString(resp.Msg.Rcode))
	fmt.Printf("ad:       %v\n", resp.Msg.AuthenticatedData)
	fmt.Println("answer:")
	for _, rr := range resp.Msg.Answer {
		fmt.Printf("  %s\n", rr.String())
	}
	for _, rr := range resp.Msg.Extra {
		if txt, ok := rr.(*dns.TXT); ok && txt.Hdr.Class == uint16(dnssec.ReasonTXTClass) {
			fmt.Printf("reason:   %s\n", joinTXT(txt.Txt))
		}
	}

	return nil
}

func joinTXT(chunks []string) string {
	out := ""
	for _, c := range chunks {
		out += c
	}
	return out
}
