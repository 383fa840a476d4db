// Package directory looks up Amazon Connect users and instances.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/connect"
)

var (
	ErrUserLookup = errors.New("user lookup error")
	ErrSearch     = errors.New("user search error")
)

const (
	// searchPageSize is the largest page SearchUsers accepts.
	searchPageSize = 100

	hierarchyMatchWithChildGroups = "WITH_CHILD_GROUPS"
)

type ConnectAPI interface {
	DescribeUserWithContext(ctx aws.Context, input *connect.DescribeUserInput, opts ...request.Option) (*connect.DescribeUserOutput, error)
	DescribeInstanceWithContext(ctx aws.Context, input *connect.DescribeInstanceInput, opts ...request.Option) (*connect.DescribeInstanceOutput, error)
	SearchUsersWithContext(ctx aws.Context, input *connect.SearchUsersInput, opts ...request.Option) (*connect.SearchUsersOutput, error)
}

type User struct {
	ID               string
	Username         string
	Identity         *Identity
	HierarchyGroupID string
	Tags             map[string]string
}

type Identity struct {
	FirstName      string
	LastName       string
	Email          string
	SecondaryEmail string
}

func (u *User) FullName() string {
	if u.Identity == nil {
		return ""
	}
	return strings.TrimSpace(u.Identity.FirstName + " " + u.Identity.LastName)
}

// Tag returns the value of the tag whose key matches key case-insensitively.
func (u *User) Tag(key string) (string, bool) {
	if v, ok := u.Tags[key]; ok {
		return v, true
	}
	for k, v := range u.Tags {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}

	return "", false
}

// UserSummary is a search hit; it carries no contact fields.
type UserSummary struct {
	ID               string
	Username         string
	HierarchyGroupID string
}

type Client struct {
	connect    ConnectAPI
	roleTagKey string
}

func NewClient(api ConnectAPI, roleTagKey string) *Client {
	return &Client{connect: api, roleTagKey: roleTagKey}
}

func (c *Client) FetchUser(ctx context.Context, instanceID, userID string) (*User, error) {
	resp, err := c.connect.DescribeUserWithContext(ctx, &connect.DescribeUserInput{
		InstanceId: aws.String(instanceID),
		UserId:     aws.String(userID),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: describe user %s: %v", ErrUserLookup, userID, err)
	}
	if resp == nil || resp.User == nil {
		return nil, fmt.Errorf("%w: user %s not found", ErrUserLookup, userID)
	}

	return userFromConnect(resp.User), nil
}

func (c *Client) FetchTenantAlias(ctx context.Context, instanceID string) (string, error) {
	resp, err := c.connect.DescribeInstanceWithContext(ctx, &connect.DescribeInstanceInput{
		InstanceId: aws.String(instanceID),
	})
	if err != nil {
		return "", fmt.Errorf("describe instance %s: %w", instanceID, err)
	}
	if resp == nil || resp.Instance == nil || aws.StringValue(resp.Instance.InstanceAlias) == "" {
		return "", fmt.Errorf("instance %s has no alias", instanceID)
	}

	return aws.StringValue(resp.Instance.InstanceAlias), nil
}

// SearchByHierarchyAndRole finds users in hierarchyGroupID or any of its
// descendants whose role tag equals role.
func (c *Client) SearchByHierarchyAndRole(ctx context.Context, hierarchyGroupID, role, instanceID string) ([]UserSummary, error) {
	return c.search(ctx, &connect.SearchUsersInput{
		InstanceId: aws.String(instanceID),
		SearchCriteria: &connect.UserSearchCriteria{
			HierarchyGroupCondition: &connect.HierarchyGroupCondition{
				Value:                   aws.String(hierarchyGroupID),
				HierarchyGroupMatchType: aws.String(hierarchyMatchWithChildGroups),
			},
		},
		SearchFilter: c.roleFilter(role),
	})
}

// SearchByRole finds users across the instance whose role tag equals role.
func (c *Client) SearchByRole(ctx context.Context, role, instanceID string) ([]UserSummary, error) {
	return c.search(ctx, &connect.SearchUsersInput{
		InstanceId:   aws.String(instanceID),
		SearchFilter: c.roleFilter(role),
	})
}

func (c *Client) roleFilter(role string) *connect.UserSearchFilter {
	return &connect.UserSearchFilter{
		TagFilter: &connect.ControlPlaneTagFilter{
			TagCondition: &connect.TagCondition{
				TagKey:   aws.String(c.roleTagKey),
				TagValue: aws.String(role),
			},
		},
	}
}

func (c *Client) search(ctx context.Context, input *connect.SearchUsersInput) ([]UserSummary, error) {
	var users []UserSummary
	var nextToken *string
	for {
		page := *input
		page.MaxResults = aws.Int64(searchPageSize)
		page.NextToken = nextToken
		resp, err := c.connect.SearchUsersWithContext(ctx, &page)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSearch, err)
		}
		for _, u := range resp.Users {
			if u == nil || aws.StringValue(u.Id) == "" {
				continue
			}
			users = append(users, UserSummary{
				ID:               aws.StringValue(u.Id),
				Username:         aws.StringValue(u.Username),
				HierarchyGroupID: aws.StringValue(u.HierarchyGroupId),
			})
		}
		if aws.StringValue(resp.NextToken) == "" {
			break
		}
		nextToken = resp.NextToken
	}

	return users, nil
}

func userFromConnect(u *connect.User) *User {
	user := &User{
		ID:               aws.StringValue(u.Id),
		Username:         aws.StringValue(u.Username),
		HierarchyGroupID: aws.StringValue(u.HierarchyGroupId),
		Tags:             aws.StringValueMap(u.Tags),
	}
	if u.IdentityInfo != nil {
		user.Identity = &Identity{
			FirstName:      aws.StringValue(u.IdentityInfo.FirstName),
			LastName:       aws.StringValue(u.IdentityInfo.LastName),
			Email:          aws.StringValue(u.IdentityInfo.Email),
			SecondaryEmail: aws.StringValue(u.IdentityInfo.SecondaryEmail),
		}
	}

	return user
}
