package text

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/webstack/internal/core/domain"
	portsmocks "github.com/olusolaa/webstack/internal/core/ports/mocks"
)

func newTestReporter() (*Reporter, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewReporterWithWriter(Config{NoColor: true}, buf, portsmocks.NewQuietLogger()), buf
}

func TestReportPlan(t *testing.T) {
	r, buf := newTestReporter()
	cs := domain.ChangeSet{Changes: []domain.ResourceChange{
		{Address: "aws_security_group.web_sg", Kind: domain.KindSecurityGroup, Action: domain.ActionNoOp, ID: "sg-1"},
		{Address: "aws_instance.web", Kind: domain.KindComputeInstance, Action: domain.ActionReplace, ID: "i-1",
			Diffs: []domain.AttributeDiff{{AttributeName: "image_id", ExpectedValue: "ami-2", ActualValue: "ami-1", ForcesReplace: true}}},
		{Address: "aws_s3_bucket.site", Kind: domain.KindStorageBucket, Action: domain.ActionCreate},
		{Address: `aws_s3_object.site["old.html"]`, Kind: domain.KindBucketObject, Action: domain.ActionDelete, ID: "b/old.html"},
	}}

	require.NoError(t, r.ReportPlan(context.Background(), cs))

	out := buf.String()
	assert.Contains(t, out, "Execution Plan")
	assert.Contains(t, out, "-/+ replace")
	assert.Contains(t, out, "image_id=[Expected: ami-2, Actual: ami-1] (forces replacement)")
	assert.Contains(t, out, "+ create")
	assert.Contains(t, out, "id b/old.html")
	assert.NotContains(t, out, "aws_security_group.web_sg")
	assert.Contains(t, out, "Plan: 1 to create, 0 to update, 1 to replace, 1 to delete (1 unchanged).")
}

func TestReportPlan_NoChanges(t *testing.T) {
	r, buf := newTestReporter()

	require.NoError(t, r.ReportPlan(context.Background(), domain.ChangeSet{Changes: []domain.ResourceChange{
		{Address: "aws_instance.web", Action: domain.ActionNoOp},
	}}))

	assert.Contains(t, buf.String(), "No changes.")
}

func TestReportPlan_Destroy(t *testing.T) {
	r, buf := newTestReporter()

	require.NoError(t, r.ReportPlan(context.Background(), domain.ChangeSet{Destroy: true, Changes: []domain.ResourceChange{
		{Address: "aws_instance.web", Kind: domain.KindComputeInstance, Action: domain.ActionDelete, ID: "i-1"},
	}}))

	assert.Contains(t, buf.String(), "Destroy Plan")
	assert.Contains(t, buf.String(), "- delete")
}

func TestReportApplyAndOutputs(t *testing.T) {
	r, buf := newTestReporter()

	require.NoError(t, r.ReportApply(context.Background(), domain.ApplyResult{
		Summary: domain.ChangeSummary{Create: 5},
		Outputs: map[string]string{"instance_id": "i-1", "cloudfront_domain_name": "d1.cloudfront.net"},
	}))

	out := buf.String()
	assert.Contains(t, out, "Apply complete! Resources: 5 created, 0 updated, 0 replaced, 0 deleted.")
	assert.Regexp(t, `cloudfront_domain_name\s+= "d1.cloudfront.net"`, out)
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("cloudfront_domain_name")), bytes.Index(buf.Bytes(), []byte("instance_id")))
}

func TestReportOutputs_Empty(t *testing.T) {
	r, buf := newTestReporter()

	require.NoError(t, r.ReportOutputs(context.Background(), nil))

	assert.Contains(t, buf.String(), "No outputs recorded")
}
