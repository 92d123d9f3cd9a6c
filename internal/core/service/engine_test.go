package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/olusolaa/webstack/internal/core/domain"
	portsmocks "github.com/olusolaa/webstack/internal/core/ports/mocks"
	"github.com/olusolaa/webstack/internal/errors"
)

const (
	sgAddress       = "aws_security_group.web_sg"
	instanceAddress = "aws_instance.web"
)

type EngineTestSuite struct {
	suite.Suite
	ctx          context.Context
	sgHandler    *portsmocks.ResourceHandler
	instHandler  *portsmocks.ResourceHandler
	sgComparer   *portsmocks.ResourceComparer
	instComparer *portsmocks.ResourceComparer
	store        *portsmocks.StateStore
	engine       *ApplyEngine
	plan         domain.Plan

	mu    sync.Mutex
	calls []string
}

func (s *EngineTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.calls = nil
	s.sgHandler = &portsmocks.ResourceHandler{HandlerKind: domain.KindSecurityGroup}
	s.instHandler = &portsmocks.ResourceHandler{HandlerKind: domain.KindComputeInstance}
	s.sgComparer = &portsmocks.ResourceComparer{ComparerKind: domain.KindSecurityGroup}
	s.instComparer = &portsmocks.ResourceComparer{ComparerKind: domain.KindComputeInstance}
	s.store = &portsmocks.StateStore{}

	registry := NewComponentRegistry()
	s.Require().NoError(registry.RegisterResourceComparer(s.sgComparer))
	s.Require().NoError(registry.RegisterResourceComparer(s.instComparer))

	var err error
	s.engine, err = NewApplyEngine(registry, portsmocks.NewPlatformProvider(s.sgHandler, s.instHandler), s.store, portsmocks.NewQuietLogger(), 4)
	s.Require().NoError(err)

	s.plan, err = domain.NewPlan([][]domain.ResourceSpec{
		{domain.SecurityGroupSpec{ResourceAddress: sgAddress, Name: "web-sg", VPCID: "vpc-1"}},
		{domain.InstanceSpec{
			ResourceAddress:  instanceAddress,
			ImageID:          "ami-1",
			InstanceType:     "t2.micro",
			SecurityGroupRef: domain.Ref{Address: sgAddress, Attribute: domain.OutputID},
		}},
	}, []domain.OutputSpec{
		{Name: "instance_public_ip", Value: domain.Ref{Address: instanceAddress, Attribute: domain.OutputPublicIP}},
		{Name: "security_group_id", Value: domain.Ref{Address: sgAddress, Attribute: domain.OutputID}},
	})
	s.Require().NoError(err)
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (s *EngineTestSuite) record(name string) func(mock.Arguments) {
	return func(mock.Arguments) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.calls = append(s.calls, name)
	}
}

func sgLive(id string) *domain.LiveResource {
	return &domain.LiveResource{Kind: domain.KindSecurityGroup, ID: id, Outputs: map[string]string{domain.OutputID: id}}
}

func instanceLive(id, ip string) *domain.LiveResource {
	return &domain.LiveResource{
		Kind:    domain.KindComputeInstance,
		ID:      id,
		Outputs: map[string]string{domain.OutputID: id, domain.OutputPublicIP: ip},
	}
}

func withSecurityGroup(id string) interface{} {
	return mock.MatchedBy(func(spec domain.ResourceSpec) bool {
		inst, ok := spec.(domain.InstanceSpec)
		return ok && inst.SecurityGroupID == id
	})
}

func (s *EngineTestSuite) seedState(entries ...domain.StateEntry) {
	st := domain.NewState("lineage")
	for _, e := range entries {
		st.Put(e)
	}
	s.store.State = st
}

func (s *EngineTestSuite) actions(cs domain.ChangeSet) map[string]domain.ChangeAction {
	out := make(map[string]domain.ChangeAction, len(cs.Changes))
	for _, ch := range cs.Changes {
		out[ch.Address] = ch.Action
	}
	return out
}

func (s *EngineTestSuite) TestPlan_EmptyStateCreatesEverything() {
	s.sgHandler.On("Discover", mock.Anything, mock.Anything).Return(nil, nil).Once()
	s.instHandler.On("Discover", mock.Anything, withSecurityGroup("")).Return(nil, nil).Once()

	cs, err := s.engine.Plan(s.ctx, s.plan)

	s.Require().NoError(err)
	s.Equal(map[string]domain.ChangeAction{sgAddress: domain.ActionCreate, instanceAddress: domain.ActionCreate}, s.actions(cs))
	s.Equal(sgAddress, cs.Changes[0].Address)
	s.Equal(1, cs.Changes[1].Stage)
	s.Equal(domain.UnknownValue, cs.Changes[1].Desired.Attributes()[domain.ComputeSecurityGroupsKey].([]string)[0])
	s.Len(cs.Outputs, 2)
	s.sgHandler.AssertExpectations(s.T())
	s.instHandler.AssertExpectations(s.T())
}

func (s *EngineTestSuite) TestPlan_InSyncBindsReferencesFromLiveOutputs() {
	s.seedState(
		domain.StateEntry{Address: sgAddress, Kind: domain.KindSecurityGroup, ID: "sg-1", Stage: 0},
		domain.StateEntry{Address: instanceAddress, Kind: domain.KindComputeInstance, ID: "i-1", Stage: 1},
	)
	s.sgHandler.On("Read", mock.Anything, "sg-1").Return(sgLive("sg-1"), nil).Once()
	s.instHandler.On("Read", mock.Anything, "i-1").Return(instanceLive("i-1", "54.0.0.1"), nil).Once()
	s.sgComparer.On("Compare", mock.Anything, mock.Anything, mock.Anything).Return(nil, false, nil).Once()
	s.instComparer.On("Compare", mock.Anything, withSecurityGroup("sg-1"), mock.Anything).Return(nil, false, nil).Once()

	cs, err := s.engine.Plan(s.ctx, s.plan)

	s.Require().NoError(err)
	s.False(cs.HasChanges())
	s.Equal(2, cs.Summary().NoOp)
	s.instComparer.AssertExpectations(s.T())
}

func (s *EngineTestSuite) TestPlan_DiffsBecomeUpdateOrReplace() {
	s.seedState(
		domain.StateEntry{Address: sgAddress, Kind: domain.KindSecurityGroup, ID: "sg-1", Stage: 0},
		domain.StateEntry{Address: instanceAddress, Kind: domain.KindComputeInstance, ID: "i-1", Stage: 1},
	)
	s.sgHandler.On("Read", mock.Anything, "sg-1").Return(sgLive("sg-1"), nil)
	s.instHandler.On("Read", mock.Anything, "i-1").Return(instanceLive("i-1", "54.0.0.1"), nil)
	s.sgComparer.On("Compare", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.AttributeDiff{{AttributeName: domain.SecurityGroupIngressKey}}, false, nil)
	s.instComparer.On("Compare", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.AttributeDiff{{AttributeName: domain.ComputeImageIDKey, ForcesReplace: true}}, true, nil)

	cs, err := s.engine.Plan(s.ctx, s.plan)

	s.Require().NoError(err)
	s.Equal(map[string]domain.ChangeAction{sgAddress: domain.ActionUpdate, instanceAddress: domain.ActionReplace}, s.actions(cs))
	s.Equal("i-1", cs.Changes[1].ID)
}

func (s *EngineTestSuite) TestPlan_ObjectGoneFromPlatformIsRecreated() {
	s.seedState(domain.StateEntry{Address: sgAddress, Kind: domain.KindSecurityGroup, ID: "sg-gone", Stage: 0})
	s.sgHandler.On("Read", mock.Anything, "sg-gone").
		Return(nil, errors.New(errors.CodeResourceNotFound, "gone")).Once()
	s.instHandler.On("Discover", mock.Anything, mock.Anything).Return(nil, nil).Once()

	cs, err := s.engine.Plan(s.ctx, s.plan)

	s.Require().NoError(err)
	s.Equal(domain.ActionCreate, s.actions(cs)[sgAddress])
	s.sgHandler.AssertNotCalled(s.T(), "Discover", mock.Anything, mock.Anything)
}

func (s *EngineTestSuite) TestPlan_ReadErrorAborts() {
	s.seedState(domain.StateEntry{Address: sgAddress, Kind: domain.KindSecurityGroup, ID: "sg-1", Stage: 0})
	s.sgHandler.On("Read", mock.Anything, "sg-1").
		Return(nil, errors.New(errors.CodePlatformAuthError, "expired")).Once()

	_, err := s.engine.Plan(s.ctx, s.plan)

	s.True(errors.Is(err, errors.CodePlatformAuthError))
}

func (s *EngineTestSuite) TestPlan_OrphanedEntriesAreDeletedLast() {
	s.seedState(
		domain.StateEntry{Address: `aws_s3_object.site["old.html"]`, Kind: domain.KindBucketObject, ID: "b/old.html", Stage: 1},
	)
	s.sgHandler.On("Discover", mock.Anything, mock.Anything).Return(nil, nil)
	s.instHandler.On("Discover", mock.Anything, mock.Anything).Return(nil, nil)

	cs, err := s.engine.Plan(s.ctx, s.plan)

	s.Require().NoError(err)
	s.Require().Len(cs.Changes, 3)
	last := cs.Changes[2]
	s.Equal(domain.ActionDelete, last.Action)
	s.Equal("b/old.html", last.ID)
}

func (s *EngineTestSuite) TestApply_CreatesInStageOrderAndSavesState() {
	s.sgHandler.On("Discover", mock.Anything, mock.Anything).Return(nil, nil)
	s.instHandler.On("Discover", mock.Anything, mock.Anything).Return(nil, nil)
	s.sgHandler.On("Create", mock.Anything, mock.Anything).Run(s.record("sg")).Return(sgLive("sg-1"), nil).Once()
	s.instHandler.On("Create", mock.Anything, withSecurityGroup("sg-1")).Run(s.record("instance")).
		Return(instanceLive("i-1", "54.0.0.1"), nil).Once()

	cs, err := s.engine.Plan(s.ctx, s.plan)
	s.Require().NoError(err)
	result, err := s.engine.Apply(s.ctx, s.plan, cs)

	s.Require().NoError(err)
	s.Equal([]string{"sg", "instance"}, s.calls)
	s.Equal(2, result.Summary.Create)
	s.Equal(map[string]string{"instance_public_ip": "54.0.0.1", "security_group_id": "sg-1"}, result.Outputs)

	st := s.store.State
	s.GreaterOrEqual(s.store.Saves, 3)
	entry, ok := st.Entry(instanceAddress)
	s.Require().True(ok)
	s.Equal("i-1", entry.ID)
	s.Equal(1, entry.Stage)
	s.Equal("54.0.0.1", st.Outputs["instance_public_ip"])
	s.instHandler.AssertExpectations(s.T())
}

func (s *EngineTestSuite) TestApply_FailureKeepsCompletedStages() {
	s.sgHandler.On("Discover", mock.Anything, mock.Anything).Return(nil, nil)
	s.instHandler.On("Discover", mock.Anything, mock.Anything).Return(nil, nil)
	s.sgHandler.On("Create", mock.Anything, mock.Anything).Return(sgLive("sg-1"), nil).Once()
	s.instHandler.On("Create", mock.Anything, mock.Anything).
		Return(nil, errors.New(errors.CodePlatformAPIError, "InsufficientInstanceCapacity")).Once()

	cs, err := s.engine.Plan(s.ctx, s.plan)
	s.Require().NoError(err)
	result, err := s.engine.Apply(s.ctx, s.plan, cs)

	s.True(errors.Is(err, errors.CodePlatformAPIError))
	s.Equal(1, result.Summary.Create)
	_, ok := s.store.State.Entry(sgAddress)
	s.True(ok)
	_, ok = s.store.State.Entry(instanceAddress)
	s.False(ok)
}

func (s *EngineTestSuite) TestApply_UpdateAndReplace() {
	s.seedState(
		domain.StateEntry{Address: sgAddress, Kind: domain.KindSecurityGroup, ID: "sg-1", Stage: 0},
		domain.StateEntry{Address: instanceAddress, Kind: domain.KindComputeInstance, ID: "i-1", Stage: 1},
	)
	ingress := []domain.AttributeDiff{{AttributeName: domain.SecurityGroupIngressKey}}
	s.sgHandler.On("Read", mock.Anything, "sg-1").Return(sgLive("sg-1"), nil)
	s.instHandler.On("Read", mock.Anything, "i-1").Return(instanceLive("i-1", "54.0.0.1"), nil)
	s.sgComparer.On("Compare", mock.Anything, mock.Anything, mock.Anything).Return(ingress, false, nil)
	s.instComparer.On("Compare", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.AttributeDiff{{AttributeName: domain.ComputeImageIDKey, ForcesReplace: true}}, true, nil)

	s.sgHandler.On("Update", mock.Anything, "sg-1", mock.Anything, ingress).Return(sgLive("sg-1"), nil).Once()
	s.instHandler.On("Delete", mock.Anything, "i-1").Run(s.record("delete")).Return(nil).Once()
	s.instHandler.On("Create", mock.Anything, withSecurityGroup("sg-1")).Run(s.record("create")).
		Return(instanceLive("i-2", "54.0.0.2"), nil).Once()

	cs, err := s.engine.Plan(s.ctx, s.plan)
	s.Require().NoError(err)
	result, err := s.engine.Apply(s.ctx, s.plan, cs)

	s.Require().NoError(err)
	s.Equal([]string{"delete", "create"}, s.calls)
	s.Equal(1, result.Summary.Update)
	s.Equal(1, result.Summary.Replace)
	entry, _ := s.store.State.Entry(instanceAddress)
	s.Equal("i-2", entry.ID)
	s.sgHandler.AssertExpectations(s.T())
}

func (s *EngineTestSuite) TestApply_NoOpAdoptsDiscoveredObjects() {
	s.sgHandler.On("Discover", mock.Anything, mock.Anything).Return(sgLive("sg-found"), nil)
	s.instHandler.On("Discover", mock.Anything, mock.Anything).Return(instanceLive("i-found", "54.0.0.9"), nil)
	s.sgComparer.On("Compare", mock.Anything, mock.Anything, mock.Anything).Return(nil, false, nil)
	s.instComparer.On("Compare", mock.Anything, mock.Anything, mock.Anything).Return(nil, false, nil)

	cs, err := s.engine.Plan(s.ctx, s.plan)
	s.Require().NoError(err)
	result, err := s.engine.Apply(s.ctx, s.plan, cs)

	s.Require().NoError(err)
	s.Equal(2, result.Summary.NoOp)
	s.Equal("54.0.0.9", result.Outputs["instance_public_ip"])
	entry, ok := s.store.State.Entry(sgAddress)
	s.Require().True(ok)
	s.Equal("sg-found", entry.ID)
	s.sgHandler.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *EngineTestSuite) TestApply_UnresolvedReference() {
	cs := domain.ChangeSet{Changes: []domain.ResourceChange{{
		Address: instanceAddress,
		Kind:    domain.KindComputeInstance,
		Action:  domain.ActionCreate,
		Stage:   1,
		Desired: s.plan.Stage(1)[0],
	}}}

	_, err := s.engine.Apply(s.ctx, s.plan, cs)

	s.True(errors.Is(err, errors.CodeUnresolvedRef))
	s.instHandler.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *EngineTestSuite) TestDestroy_DeletesInReverseStageOrder() {
	s.seedState(
		domain.StateEntry{Address: sgAddress, Kind: domain.KindSecurityGroup, ID: "sg-1", Stage: 0},
		domain.StateEntry{Address: instanceAddress, Kind: domain.KindComputeInstance, ID: "i-1", Stage: 1},
	)
	s.store.State.Outputs["security_group_id"] = "sg-1"
	s.instHandler.On("Delete", mock.Anything, "i-1").Run(s.record("instance")).Return(nil).Once()
	s.sgHandler.On("Delete", mock.Anything, "sg-1").Run(s.record("sg")).Return(nil).Once()

	cs, err := s.engine.PlanDestroy(s.ctx)
	s.Require().NoError(err)
	s.True(cs.Destroy)
	s.Equal(instanceAddress, cs.Changes[0].Address)

	result, err := s.engine.Apply(s.ctx, domain.Plan{}, cs)

	s.Require().NoError(err)
	s.Equal([]string{"instance", "sg"}, s.calls)
	s.Equal(2, result.Summary.Delete)
	s.Empty(s.store.State.Resources)
	s.Empty(s.store.State.Outputs)
}

func (s *EngineTestSuite) TestApply_CancelledContext() {
	s.sgHandler.On("Discover", mock.Anything, mock.Anything).Return(nil, nil)
	s.instHandler.On("Discover", mock.Anything, mock.Anything).Return(nil, nil)
	cs, err := s.engine.Plan(s.ctx, s.plan)
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err = s.engine.Apply(ctx, s.plan, cs)

	s.True(errors.Is(err, errors.CodeAborted))
	s.sgHandler.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *EngineTestSuite) TestOutputs() {
	s.seedState()
	s.store.State.Outputs["cloudfront_domain_name"] = "d1.cloudfront.net"

	out, err := s.engine.Outputs(s.ctx)

	s.Require().NoError(err)
	s.Equal(map[string]string{"cloudfront_domain_name": "d1.cloudfront.net"}, out)
}

func TestNewApplyEngine_Validation(t *testing.T) {
	logger := portsmocks.NewQuietLogger()
	store := &portsmocks.StateStore{}
	provider := portsmocks.NewPlatformProvider()

	_, err := NewApplyEngine(nil, provider, store, logger, 1)
	if err == nil {
		t.Fatal("expected error for nil registry")
	}
	_, err = NewApplyEngine(NewComponentRegistry(), nil, store, logger, 1)
	if err == nil {
		t.Fatal("expected error for nil provider")
	}
	e, err := NewApplyEngine(NewComponentRegistry(), provider, store, logger, 0)
	if err != nil {
		t.Fatal(err)
	}
	if e.concurrency != defaultConcurrency {
		t.Fatalf("concurrency = %d, want %d", e.concurrency, defaultConcurrency)
	}
}

func (s *EngineTestSuite) TestPlan_BucketReplaceRecreatesItsObjects() {
	const (
		bucketAddress = "aws_s3_bucket.site"
		indexAddress  = `aws_s3_object.site["index.html"]`
		otherAddress  = `aws_s3_object.assets["app.css"]`
	)
	bucketHandler := &portsmocks.ResourceHandler{HandlerKind: domain.KindStorageBucket}
	objectHandler := &portsmocks.ResourceHandler{HandlerKind: domain.KindBucketObject}
	bucketComparer := &portsmocks.ResourceComparer{ComparerKind: domain.KindStorageBucket}
	objectComparer := &portsmocks.ResourceComparer{ComparerKind: domain.KindBucketObject}
	registry := NewComponentRegistry()
	s.Require().NoError(registry.RegisterResourceComparer(bucketComparer))
	s.Require().NoError(registry.RegisterResourceComparer(objectComparer))
	engine, err := NewApplyEngine(registry, portsmocks.NewPlatformProvider(bucketHandler, objectHandler), s.store, portsmocks.NewQuietLogger(), 4)
	s.Require().NoError(err)

	plan, err := domain.NewPlan([][]domain.ResourceSpec{
		{domain.BucketSpec{ResourceAddress: bucketAddress, Name: "site", Region: "eu-west-1"}},
		{
			domain.ObjectSpec{ResourceAddress: indexAddress, Bucket: "site", Key: "index.html", ETag: "abc"},
			domain.ObjectSpec{ResourceAddress: otherAddress, Bucket: "assets", Key: "app.css", ETag: "def"},
		},
	}, nil)
	s.Require().NoError(err)
	s.seedState(
		domain.StateEntry{Address: bucketAddress, Kind: domain.KindStorageBucket, ID: "site", Stage: 0},
		domain.StateEntry{Address: indexAddress, Kind: domain.KindBucketObject, ID: "site/index.html", Stage: 1},
		domain.StateEntry{Address: otherAddress, Kind: domain.KindBucketObject, ID: "assets/app.css", Stage: 1},
	)
	objectLive := func(id string) *domain.LiveResource {
		return &domain.LiveResource{Kind: domain.KindBucketObject, ID: id, Outputs: map[string]string{domain.OutputID: id}}
	}
	bucketHandler.On("Read", mock.Anything, "site").
		Return(&domain.LiveResource{Kind: domain.KindStorageBucket, ID: "site", Outputs: map[string]string{domain.OutputID: "site"}}, nil)
	objectHandler.On("Read", mock.Anything, "site/index.html").Return(objectLive("site/index.html"), nil)
	objectHandler.On("Read", mock.Anything, "assets/app.css").Return(objectLive("assets/app.css"), nil)
	bucketComparer.On("Compare", mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.AttributeDiff{{AttributeName: domain.StorageBucketRegionKey, ForcesReplace: true}}, true, nil)
	objectComparer.On("Compare", mock.Anything, mock.Anything, mock.Anything).Return(nil, false, nil)

	cs, err := engine.Plan(s.ctx, plan)

	s.Require().NoError(err)
	s.Equal(map[string]domain.ChangeAction{
		bucketAddress: domain.ActionReplace,
		indexAddress:  domain.ActionCreate,
		otherAddress:  domain.ActionNoOp,
	}, s.actions(cs))

	bucketHandler.On("Delete", mock.Anything, "site").Run(s.record("delete bucket")).Return(nil).Once()
	bucketHandler.On("Create", mock.Anything, mock.Anything).Run(s.record("create bucket")).
		Return(&domain.LiveResource{Kind: domain.KindStorageBucket, ID: "site"}, nil).Once()
	objectHandler.On("Create", mock.Anything, mock.MatchedBy(func(spec domain.ResourceSpec) bool {
		return spec.Address() == indexAddress
	})).Run(s.record("upload index.html")).Return(objectLive("site/index.html"), nil).Once()

	result, err := engine.Apply(s.ctx, plan, cs)

	s.Require().NoError(err)
	s.Equal([]string{"delete bucket", "create bucket", "upload index.html"}, s.calls)
	s.Equal(1, result.Summary.Replace)
	s.Equal(1, result.Summary.Create)
	s.Equal(1, result.Summary.NoOp)
	entry, ok := s.store.State.Entry(indexAddress)
	s.Require().True(ok)
	s.Equal("site/index.html", entry.ID)
	objectHandler.AssertNotCalled(s.T(), "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	objectHandler.AssertExpectations(s.T())
}
