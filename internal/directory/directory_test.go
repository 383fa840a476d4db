package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockConnectAPI struct {
	mock.Mock
}

func (m *MockConnectAPI) DescribeUserWithContext(ctx aws.Context, input *connect.DescribeUserInput, _ ...request.Option) (*connect.DescribeUserOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*connect.DescribeUserOutput)
	return out, args.Error(1)
}

func (m *MockConnectAPI) DescribeInstanceWithContext(ctx aws.Context, input *connect.DescribeInstanceInput, _ ...request.Option) (*connect.DescribeInstanceOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*connect.DescribeInstanceOutput)
	return out, args.Error(1)
}

func (m *MockConnectAPI) SearchUsersWithContext(ctx aws.Context, input *connect.SearchUsersInput, _ ...request.Option) (*connect.SearchUsersOutput, error) {
	args := m.Called(ctx, input)
	out, _ := args.Get(0).(*connect.SearchUsersOutput)
	return out, args.Error(1)
}

func TestFetchUser(t *testing.T) {
	ctx := context.Background()
	input := &connect.DescribeUserInput{InstanceId: aws.String("instance-1"), UserId: aws.String("agent-1")}

	t.Run("User found", func(t *testing.T) {
		api := new(MockConnectAPI)
		api.On("DescribeUserWithContext", ctx, input).Return(&connect.DescribeUserOutput{
			User: &connect.User{
				Id:               aws.String("agent-1"),
				Username:         aws.String("jdoe"),
				HierarchyGroupId: aws.String("HG1"),
				IdentityInfo: &connect.UserIdentityInfo{
					FirstName:      aws.String("Jane"),
					LastName:       aws.String("Doe"),
					Email:          aws.String("jane@example.com"),
					SecondaryEmail: aws.String("jane.doe@example.org"),
				},
				Tags: map[string]*string{"Role": aws.String("Agent")},
			},
		}, nil)

		user, err := NewClient(api, "Role").FetchUser(ctx, "instance-1", "agent-1")
		require.NoError(t, err)
		assert.Equal(t, "agent-1", user.ID)
		assert.Equal(t, "jdoe", user.Username)
		assert.Equal(t, "HG1", user.HierarchyGroupID)
		assert.Equal(t, "Jane Doe", user.FullName())
		require.NotNil(t, user.Identity)
		assert.Equal(t, "jane@example.com", user.Identity.Email)
		assert.Equal(t, "jane.doe@example.org", user.Identity.SecondaryEmail)

		role, ok := user.Tag("role")
		require.True(t, ok)
		assert.Equal(t, "Agent", role)
	})

	t.Run("User without identity", func(t *testing.T) {
		api := new(MockConnectAPI)
		api.On("DescribeUserWithContext", ctx, input).Return(&connect.DescribeUserOutput{
			User: &connect.User{Id: aws.String("agent-1")},
		}, nil)

		user, err := NewClient(api, "Role").FetchUser(ctx, "instance-1", "agent-1")
		require.NoError(t, err)
		assert.Nil(t, user.Identity)
		assert.Empty(t, user.FullName())
	})

	t.Run("Service error", func(t *testing.T) {
		api := new(MockConnectAPI)
		api.On("DescribeUserWithContext", ctx, input).Return(nil, errors.New("ResourceNotFoundException"))

		_, err := NewClient(api, "Role").FetchUser(ctx, "instance-1", "agent-1")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUserLookup))
	})

	t.Run("Empty response", func(t *testing.T) {
		api := new(MockConnectAPI)
		api.On("DescribeUserWithContext", ctx, input).Return(&connect.DescribeUserOutput{}, nil)

		_, err := NewClient(api, "Role").FetchUser(ctx, "instance-1", "agent-1")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUserLookup))
	})
}

func TestFetchTenantAlias(t *testing.T) {
	ctx := context.Background()
	input := &connect.DescribeInstanceInput{InstanceId: aws.String("instance-1")}

	t.Run("Alias found", func(t *testing.T) {
		api := new(MockConnectAPI)
		api.On("DescribeInstanceWithContext", ctx, input).Return(&connect.DescribeInstanceOutput{
			Instance: &connect.Instance{InstanceAlias: aws.String("my-center")},
		}, nil)

		alias, err := NewClient(api, "Role").FetchTenantAlias(ctx, "instance-1")
		require.NoError(t, err)
		assert.Equal(t, "my-center", alias)
	})

	t.Run("Service error", func(t *testing.T) {
		api := new(MockConnectAPI)
		api.On("DescribeInstanceWithContext", ctx, input).Return(nil, errors.New("AccessDenied"))

		_, err := NewClient(api, "Role").FetchTenantAlias(ctx, "instance-1")
		require.Error(t, err)
	})

	t.Run("Missing alias", func(t *testing.T) {
		api := new(MockConnectAPI)
		api.On("DescribeInstanceWithContext", ctx, input).Return(&connect.DescribeInstanceOutput{
			Instance: &connect.Instance{},
		}, nil)

		_, err := NewClient(api, "Role").FetchTenantAlias(ctx, "instance-1")
		require.Error(t, err)
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("Hierarchy and role", func(t *testing.T) {
		api := new(MockConnectAPI)
		api.On("SearchUsersWithContext", ctx, &connect.SearchUsersInput{
			InstanceId: aws.String("instance-1"),
			MaxResults: aws.Int64(100),
			SearchCriteria: &connect.UserSearchCriteria{
				HierarchyGroupCondition: &connect.HierarchyGroupCondition{
					Value:                   aws.String("HG1"),
					HierarchyGroupMatchType: aws.String("WITH_CHILD_GROUPS"),
				},
			},
			SearchFilter: &connect.UserSearchFilter{
				TagFilter: &connect.ControlPlaneTagFilter{
					TagCondition: &connect.TagCondition{TagKey: aws.String("Role"), TagValue: aws.String("supervisor")},
				},
			},
		}).Return(&connect.SearchUsersOutput{
			Users: []*connect.UserSearchSummary{
				{Id: aws.String("sup-1"), Username: aws.String("sup"), HierarchyGroupId: aws.String("HG2")},
			},
		}, nil)

		users, err := NewClient(api, "Role").SearchByHierarchyAndRole(ctx, "HG1", "supervisor", "instance-1")
		require.NoError(t, err)
		assert.Equal(t, []UserSummary{{ID: "sup-1", Username: "sup", HierarchyGroupID: "HG2"}}, users)
		api.AssertExpectations(t)
	})

	t.Run("Role only follows pages", func(t *testing.T) {
		api := new(MockConnectAPI)
		filter := &connect.UserSearchFilter{
			TagFilter: &connect.ControlPlaneTagFilter{
				TagCondition: &connect.TagCondition{TagKey: aws.String("Role"), TagValue: aws.String("manager")},
			},
		}
		api.On("SearchUsersWithContext", ctx, &connect.SearchUsersInput{
			InstanceId:   aws.String("instance-1"),
			MaxResults:   aws.Int64(100),
			SearchFilter: filter,
		}).Return(&connect.SearchUsersOutput{
			Users:     []*connect.UserSearchSummary{{Id: aws.String("m-1")}, {Username: aws.String("no-id")}},
			NextToken: aws.String("page-2"),
		}, nil).Once()
		api.On("SearchUsersWithContext", ctx, &connect.SearchUsersInput{
			InstanceId:   aws.String("instance-1"),
			MaxResults:   aws.Int64(100),
			NextToken:    aws.String("page-2"),
			SearchFilter: filter,
		}).Return(&connect.SearchUsersOutput{
			Users: []*connect.UserSearchSummary{{Id: aws.String("m-2")}},
		}, nil).Once()

		users, err := NewClient(api, "Role").SearchByRole(ctx, "manager", "instance-1")
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "m-1", users[0].ID)
		assert.Equal(t, "m-2", users[1].ID)
		api.AssertExpectations(t)
	})

	t.Run("Search error", func(t *testing.T) {
		api := new(MockConnectAPI)
		api.On("SearchUsersWithContext", ctx, mock.Anything).Return(nil, errors.New("ThrottlingException"))

		_, err := NewClient(api, "Role").SearchByRole(ctx, "manager", "instance-1")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrSearch))
	})
}
