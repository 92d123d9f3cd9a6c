// Package stack builds the fixed web stack plan: a web server instance
// behind a security group, and a static site bucket fronted by CloudFront.
package stack

import (
	"fmt"

	"github.com/olusolaa/webstack/internal/core/domain"
	"github.com/olusolaa/webstack/internal/errors"
	"github.com/olusolaa/webstack/internal/site"
)

const (
	SecurityGroupAddress = "aws_security_group.web_sg"
	InstanceAddress      = "aws_instance.web"
	BucketAddress        = "aws_s3_bucket.site"
	DistributionAddress  = "aws_cloudfront_distribution.site"

	securityGroupName = "web-sg"
	indexDocument     = "index.html"
	errorDocument     = "error.html"
	anywhere          = "0.0.0.0/0"
)

const (
	OutputCloudFrontDomain = "cloudfront_domain_name"
	OutputInstanceID       = "instance_id"
	OutputInstancePublicIP = "instance_public_ip"
	OutputSecurityGroupID  = "security_group_id"
	OutputWebsiteEndpoint  = "bucket_website_endpoint"
)

// ObjectAddress is the address of the uploaded object for key.
func ObjectAddress(key string) string {
	return fmt.Sprintf("aws_s3_object.site[%q]", key)
}

// Build returns the plan for in, with one object per asset. region is the
// region the bucket is created in.
func Build(in Inputs, region string, assets []site.Asset) (domain.Plan, error) {
	userData, err := RenderUserData(in)
	if err != nil {
		return domain.Plan{}, errors.Wrap(err, errors.CodeInternal, "failed to render user data")
	}

	sg := domain.SecurityGroupSpec{
		ResourceAddress: SecurityGroupAddress,
		Name:            securityGroupName,
		Description:     "Allow HTTP and SSH inbound traffic",
		VPCID:           in.VPCID,
		Ingress: []domain.SecurityGroupRule{
			{Protocol: "tcp", FromPort: 80, ToPort: 80, CIDRBlocks: []string{anywhere}, Description: "HTTP"},
			{Protocol: "tcp", FromPort: 22, ToPort: 22, CIDRBlocks: []string{anywhere}, Description: "SSH"},
		},
		Egress: []domain.SecurityGroupRule{
			{Protocol: "-1", FromPort: 0, ToPort: 0, CIDRBlocks: []string{anywhere}},
		},
	}

	bucket := domain.BucketSpec{
		ResourceAddress:   BucketAddress,
		Name:              in.BucketName,
		Region:            region,
		Website:           domain.WebsiteConfig{IndexDocument: indexDocument, ErrorDocument: errorDocument},
		ObjectOwnership:   "BucketOwnerPreferred",
		PublicAccessBlock: domain.PublicAccessBlock{},
		Policy:            domain.PublicReadPolicy(in.BucketName),
	}

	instance := domain.InstanceSpec{
		ResourceAddress:  InstanceAddress,
		ImageID:          in.AMIID,
		InstanceType:     in.InstanceType,
		KeyName:          in.KeyName,
		SecurityGroupRef: domain.Ref{Address: SecurityGroupAddress, Attribute: domain.OutputID},
		UserData:         userData,
		Tags:             domain.Tags{"Name": in.InstanceName},
	}

	second := []domain.ResourceSpec{instance}
	for _, a := range assets {
		second = append(second, domain.ObjectSpec{
			ResourceAddress: ObjectAddress(a.Key),
			Bucket:          in.BucketName,
			Key:             a.Key,
			Source:          a.Source,
			ContentType:     a.ContentType,
			ETag:            a.MD5,
			Size:            a.Size,
		})
	}

	distribution := domain.DistributionSpec{
		ResourceAddress:   DistributionAddress,
		OriginRef:         domain.Ref{Address: BucketAddress, Attribute: domain.OutputRegionalDomainName},
		OriginID:          "S3-" + in.BucketName,
		Enabled:           true,
		IPv6Enabled:       true,
		DefaultRootObject: indexDocument,
		PriceClass:        "PriceClass_All",
		CacheBehavior: domain.CacheBehavior{
			AllowedMethods:       []string{"GET", "HEAD"},
			CachedMethods:        []string{"GET", "HEAD"},
			ViewerProtocolPolicy: "redirect-to-https",
			MinTTL:               0,
			DefaultTTL:           3600,
			MaxTTL:               86400,
			ForwardQueryString:   false,
			ForwardCookies:       "none",
		},
		GeoRestriction:     "none",
		DefaultCertificate: true,
	}

	outputs := []domain.OutputSpec{
		{Name: OutputCloudFrontDomain, Description: "Public domain name of the CloudFront distribution", Value: domain.Ref{Address: DistributionAddress, Attribute: domain.OutputDomainName}},
		{Name: OutputInstanceID, Value: domain.Ref{Address: InstanceAddress, Attribute: domain.OutputID}},
		{Name: OutputInstancePublicIP, Value: domain.Ref{Address: InstanceAddress, Attribute: domain.OutputPublicIP}},
		{Name: OutputSecurityGroupID, Value: domain.Ref{Address: SecurityGroupAddress, Attribute: domain.OutputID}},
		{Name: OutputWebsiteEndpoint, Value: domain.Ref{Address: BucketAddress, Attribute: domain.OutputWebsiteEndpoint}},
	}

	plan, err := domain.NewPlan([][]domain.ResourceSpec{
		{sg, bucket},
		second,
		{distribution},
	}, outputs)
	if err != nil {
		return domain.Plan{}, errors.Wrap(err, errors.CodeInternal, "invalid stack plan")
	}
	return plan, nil
}
