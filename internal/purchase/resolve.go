package purchase

import (
	"regexp"
	"strings"

	"github.com/keyshopvn/keyshop/internal/domain"
)

// OrderCodeUnavailable marks a purchase whose response carried no usable
// order identifier.
const OrderCodeUnavailable = "not available"

// manualOrderCodePattern matches the order code a support agent embeds in
// manual-delivery key text, e.g. "Mã đơn hàng: XYZ999".
var manualOrderCodePattern = regexp.MustCompile(`Mã đơn[^:]*:\s*([A-Za-z0-9]+)`)

// ResolveKeys extracts the delivered key strings, accepting either the
// sequence field or the single-value field as a one-element fallback.
func ResolveKeys(resp *domain.PurchaseResponse) []string {
	if resp == nil {
		return nil
	}
	if len(resp.KeyValues) > 0 {
		return resp.KeyValues
	}
	if resp.KeyValue != nil && *resp.KeyValue != "" {
		return []string{*resp.KeyValue}
	}
	return nil
}

// ResolveGuideURL falls through response, then variant, then product.
func ResolveGuideURL(resp *domain.PurchaseResponse, variant *domain.ProductVariant, product *domain.Product) *string {
	if resp != nil && resp.GuideURL != nil && *resp.GuideURL != "" {
		return resp.GuideURL
	}
	return variant.EffectiveGuideURL(product)
}

// ResolveOrderCode resolves the human-communicable order identifier
// through the priority chain: explicit order-code field, then the manual
// pattern inside the first delivered key, then a transaction identifier,
// then the unavailable marker.
func ResolveOrderCode(resp *domain.PurchaseResponse, manualDelivery bool) string {
	if resp == nil {
		return OrderCodeUnavailable
	}

	if len(resp.OrderCodes) > 0 && resp.OrderCodes[0] != "" {
		return resp.OrderCodes[0]
	}

	if manualDelivery {
		if keys := ResolveKeys(resp); len(keys) > 0 {
			if m := manualOrderCodePattern.FindStringSubmatch(keys[0]); m != nil {
				return m[1]
			}
		}
	}

	if resp.TransactionID != nil && *resp.TransactionID != "" {
		return transactionPrefix(*resp.TransactionID)
	}
	if len(resp.TransactionIDs) > 0 && resp.TransactionIDs[0] != "" {
		return transactionPrefix(resp.TransactionIDs[0])
	}

	return OrderCodeUnavailable
}

// transactionPrefix takes the identifier up to the first separator,
// upper-cased, the shape users quote on support channels.
func transactionPrefix(id string) string {
	prefix, _, _ := strings.Cut(id, "-")
	return strings.ToUpper(prefix)
}
