package verify

import (
	"net"
	"strings"

	"github.com/nubelab/bedrockgw/internal/domain"
)

// sgAllowsOutbound reports whether any egress rule of sg admits TCP
// traffic to port toward one of the destination CIDRs or referenced
// security groups.
func sgAllowsOutbound(sg *domain.SecurityGroupData, port int, destCIDRs, destSGs []string) bool {
	for _, rule := range sg.OutboundRules {
		if ruleAllows(rule, port, destCIDRs, destSGs) {
			return true
		}
	}
	return false
}

// sgAllowsInbound reports whether any ingress rule of sg admits TCP
// traffic on port from one of the source CIDRs or security groups.
func sgAllowsInbound(sg *domain.SecurityGroupData, port int, srcCIDRs, srcSGs []string) bool {
	for _, rule := range sg.InboundRules {
		if ruleAllows(rule, port, srcCIDRs, srcSGs) {
			return true
		}
	}
	return false
}

func ruleAllows(rule domain.SecurityGroupRule, port int, cidrs, sgIDs []string) bool {
	if !protocolMatches(rule.Protocol, "tcp") {
		return false
	}
	if !portInRange(port, rule.FromPort, rule.ToPort) {
		return false
	}

	for _, ruleCIDR := range rule.CIDRBlocks {
		for _, cidr := range cidrs {
			if cidrOverlaps(ruleCIDR, cidr) {
				return true
			}
		}
	}

	for _, refSG := range rule.ReferencedSecurityGroups {
		for _, sgID := range sgIDs {
			if refSG == sgID {
				return true
			}
		}
	}

	return false
}

func protocolMatches(ruleProtocol, destProtocol string) bool {
	rule := normalizeProtocol(ruleProtocol)
	if rule == "all" {
		return true
	}
	return rule == normalizeProtocol(destProtocol)
}

func normalizeProtocol(protocol string) string {
	switch strings.ToLower(protocol) {
	case "-1", "all", "":
		return "all"
	case "6":
		return "tcp"
	case "17":
		return "udp"
	default:
		return strings.ToLower(protocol)
	}
}

func portInRange(port, fromPort, toPort int) bool {
	if fromPort == 0 && toPort == 0 {
		return true
	}
	if fromPort == -1 && toPort == -1 {
		return true
	}
	return port >= fromPort && port <= toPort
}

func cidrOverlaps(cidr1, cidr2 string) bool {
	_, net1, err1 := net.ParseCIDR(cidr1)
	_, net2, err2 := net.ParseCIDR(cidr2)
	if err1 != nil || err2 != nil {
		return false
	}
	return net1.Contains(net2.IP) || net2.Contains(net1.IP)
}
