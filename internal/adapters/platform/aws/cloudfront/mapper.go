package cloudfront

import (
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"

	"github.com/olusolaa/webstack/internal/adapters/platform/aws/shared"
	"github.com/olusolaa/webstack/internal/core/domain"
)

const geoRestrictionNone = string(cftypes.GeoRestrictionTypeNone)

// applySpec writes the managed settings of ds onto cfg. Settings the plan
// does not manage, such as aliases and logging, are left untouched.
func applySpec(cfg *cftypes.DistributionConfig, ds domain.DistributionSpec) {
	cb := ds.CacheBehavior

	cfg.Comment = aws.String(ds.Comment)
	cfg.Enabled = aws.Bool(ds.Enabled)
	cfg.IsIPV6Enabled = aws.Bool(ds.IPv6Enabled)
	cfg.DefaultRootObject = aws.String(ds.DefaultRootObject)
	if ds.PriceClass != "" {
		cfg.PriceClass = cftypes.PriceClass(ds.PriceClass)
	}

	cfg.Origins = &cftypes.Origins{
		Quantity: aws.Int32(1),
		Items: []cftypes.Origin{{
			Id:             aws.String(ds.OriginID),
			DomainName:     aws.String(ds.OriginDomainName),
			S3OriginConfig: &cftypes.S3OriginConfig{OriginAccessIdentity: aws.String("")},
		}},
	}

	cookies := cb.ForwardCookies
	if cookies == "" {
		cookies = string(cftypes.ItemSelectionNone)
	}
	cfg.DefaultCacheBehavior = &cftypes.DefaultCacheBehavior{
		TargetOriginId:       aws.String(ds.OriginID),
		ViewerProtocolPolicy: cftypes.ViewerProtocolPolicy(cb.ViewerProtocolPolicy),
		AllowedMethods: &cftypes.AllowedMethods{
			Quantity: aws.Int32(int32(len(cb.AllowedMethods))),
			Items:    toMethods(cb.AllowedMethods),
			CachedMethods: &cftypes.CachedMethods{
				Quantity: aws.Int32(int32(len(cb.CachedMethods))),
				Items:    toMethods(cb.CachedMethods),
			},
		},
		ForwardedValues: &cftypes.ForwardedValues{
			QueryString: aws.Bool(cb.ForwardQueryString),
			Cookies:     &cftypes.CookiePreference{Forward: cftypes.ItemSelection(cookies)},
		},
		MinTTL:     aws.Int64(cb.MinTTL),
		DefaultTTL: aws.Int64(cb.DefaultTTL),
		MaxTTL:     aws.Int64(cb.MaxTTL),
	}

	geo := ds.GeoRestriction
	if geo == "" {
		geo = geoRestrictionNone
	}
	cfg.Restrictions = &cftypes.Restrictions{
		GeoRestriction: &cftypes.GeoRestriction{
			RestrictionType: cftypes.GeoRestrictionType(geo),
			Quantity:        aws.Int32(0),
		},
	}
	cfg.ViewerCertificate = &cftypes.ViewerCertificate{
		CloudFrontDefaultCertificate: aws.Bool(ds.DefaultCertificate),
	}
}

func toMethods(in []string) []cftypes.Method {
	out := make([]cftypes.Method, 0, len(in))
	for _, m := range in {
		out = append(out, cftypes.Method(m))
	}
	return out
}

// fromMethods returns method names sorted, since CloudFront does not keep
// the submitted order.
func fromMethods(in []cftypes.Method) []string {
	out := make([]string, 0, len(in))
	for _, m := range in {
		out = append(out, string(m))
	}
	sort.Strings(out)
	return out
}

func toCFTags(tags map[string]string) *cftypes.Tags {
	items := make([]cftypes.Tag, 0, len(tags))
	for _, k := range shared.SortedKeys(tags) {
		items = append(items, cftypes.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return &cftypes.Tags{Items: items}
}

func fromCFTags(tags *cftypes.Tags) map[string]string {
	out := map[string]string{}
	if tags == nil {
		return out
	}
	for _, t := range tags.Items {
		if t.Key != nil {
			out[*t.Key] = aws.ToString(t.Value)
		}
	}
	return out
}

func distributionToLive(d *cftypes.Distribution, tags map[string]string) *domain.LiveResource {
	attrs := map[string]any{
		domain.KeyTags: shared.VisibleTags(tags),
	}
	if cfg := d.DistributionConfig; cfg != nil {
		attrs[domain.DistributionEnabledKey] = aws.ToBool(cfg.Enabled)
		attrs[domain.DistributionIPv6Key] = aws.ToBool(cfg.IsIPV6Enabled)
		attrs[domain.DistributionDefaultRootObjectKey] = aws.ToString(cfg.DefaultRootObject)
		attrs[domain.DistributionCommentKey] = aws.ToString(cfg.Comment)
		attrs[domain.DistributionPriceClassKey] = string(cfg.PriceClass)

		if cfg.Origins != nil && len(cfg.Origins.Items) > 0 {
			origin := cfg.Origins.Items[0]
			attrs[domain.DistributionOriginDomainKey] = aws.ToString(origin.DomainName)
			attrs[domain.DistributionOriginIDKey] = aws.ToString(origin.Id)
		}

		if cb := cfg.DefaultCacheBehavior; cb != nil {
			attrs[domain.DistributionViewerProtocolKey] = string(cb.ViewerProtocolPolicy)
			attrs[domain.DistributionMinTTLKey] = aws.ToInt64(cb.MinTTL)
			attrs[domain.DistributionDefaultTTLKey] = aws.ToInt64(cb.DefaultTTL)
			attrs[domain.DistributionMaxTTLKey] = aws.ToInt64(cb.MaxTTL)
			if am := cb.AllowedMethods; am != nil {
				attrs[domain.DistributionAllowedMethodsKey] = fromMethods(am.Items)
				if am.CachedMethods != nil {
					attrs[domain.DistributionCachedMethodsKey] = fromMethods(am.CachedMethods.Items)
				}
			}
			if fv := cb.ForwardedValues; fv != nil {
				attrs[domain.DistributionForwardQueryStringKey] = aws.ToBool(fv.QueryString)
				if fv.Cookies != nil {
					attrs[domain.DistributionForwardCookiesKey] = string(fv.Cookies.Forward)
				}
			}
		}

		if r := cfg.Restrictions; r != nil && r.GeoRestriction != nil {
			attrs[domain.DistributionGeoRestrictionKey] = string(r.GeoRestriction.RestrictionType)
		}
		if vc := cfg.ViewerCertificate; vc != nil {
			attrs[domain.DistributionDefaultCertificateKey] = aws.ToBool(vc.CloudFrontDefaultCertificate)
		}
	}

	id := aws.ToString(d.Id)
	return &domain.LiveResource{
		Kind:       domain.KindDistribution,
		ID:         id,
		Attributes: attrs,
		Outputs: map[string]string{
			domain.OutputID:         id,
			domain.OutputARN:        aws.ToString(d.ARN),
			domain.OutputDomainName: aws.ToString(d.DomainName),
		},
	}
}
