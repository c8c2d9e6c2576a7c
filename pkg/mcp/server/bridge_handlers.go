// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/teradata-labs/smartview-mcp/pkg/mcp/protocol"
	"github.com/teradata-labs/smartview-mcp/pkg/smartview"
)

const subscriptionsPath = "/smartview/v2/streaming/subscriptions"

// ============================================================================
// Argument helpers
// ============================================================================

// queryParams copies the named arguments into SmartView query parameters.
// Absent keys are skipped; the Params encoder drops empty values and
// formats lists and numbers for the wire.
func queryParams(args map[string]interface{}, keys ...string) smartview.Params {
	query := make(smartview.Params, len(keys))
	for _, key := range keys {
		if value, ok := args[key]; ok {
			query[key] = value
		}
	}
	return query
}

// stringArg extracts a required string argument. Used for values that
// become part of the request path, where an empty string would produce
// a malformed URL rather than a clean upstream error.
func stringArg(args map[string]interface{}, key string) (string, error) {
	value, ok := args[key].(string)
	if !ok || value == "" {
		return "", protocol.NewError(protocol.InvalidParams,
			fmt.Sprintf("%s must be a non-empty string", key), nil)
	}
	return value, nil
}

// objectArg extracts a required object argument, used for request bodies.
func objectArg(args map[string]interface{}, key string) (map[string]interface{}, error) {
	value, ok := args[key].(map[string]interface{})
	if !ok {
		return nil, protocol.NewError(protocol.InvalidParams,
			fmt.Sprintf("%s must be an object", key), nil)
	}
	return value, nil
}

// ============================================================================
// Tool handlers - Environment
// ============================================================================

func (b *SmartViewBridge) handleGetCurrentEnvironment(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error) {
	query := queryParams(args, "accountNo", "ibx", "levelType", "levelValue")
	return b.callEndpoint(ctx, http.MethodGet, "/environment/v1/current", query, nil)
}

func (b *SmartViewBridge) handleGetTrendingEnvironment(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error) {
	query := queryParams(args, "accountNo", "ibx", "levelType", "levelValue", "fromDate", "toDate", "interval")
	return b.callEndpoint(ctx, http.MethodGet, "/environment/v1/trending", query, nil)
}

func (b *SmartViewBridge) handleGetEnvironmentSensors(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error) {
	query := queryParams(args, "accountNo", "ibx", "offset", "limit", "sort")
	return b.callEndpoint(ctx, http.MethodGet, "/environment/v1/sensors", query, nil)
}

func (b *SmartViewBridge) handleGetEnvironmentSensorByID(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error) {
	query := queryParams(args, "accountNo", "ibx", "sensorId")
	return b.callEndpoint(ctx, http.MethodGet, "/environment/v1/sensor", query, nil)
}

// ============================================================================
// Tool handlers - Streaming subscriptions
// ============================================================================

func (b *SmartViewBridge) handleGetAllSubscriptions(ctx context.Context, _ map[string]interface{}) (*protocol.CallToolResult, error) {
	return b.callEndpoint(ctx, http.MethodGet, subscriptionsPath, nil, nil)
}

func (b *SmartViewBridge) handleGetSubscriptionByID(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error) {
	subscriptionID, err := stringArg(args, "subscriptionId")
	if err != nil {
		return nil, err
	}
	return b.callEndpoint(ctx, http.MethodGet, subscriptionsPath+"/"+url.PathEscape(subscriptionID), nil, nil)
}

func (b *SmartViewBridge) handleCreateSubscription(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error) {
	subscription, err := objectArg(args, "subscription")
	if err != nil {
		return nil, err
	}
	return b.callEndpoint(ctx, http.MethodPost, subscriptionsPath, nil, subscription)
}

func (b *SmartViewBridge) handleUpdateSubscription(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error) {
	subscriptionID, err := stringArg(args, "subscriptionId")
	if err != nil {
		return nil, err
	}
	subscription, err := objectArg(args, "subscription")
	if err != nil {
		return nil, err
	}
	return b.callEndpoint(ctx, http.MethodPut, subscriptionsPath+"/"+url.PathEscape(subscriptionID), nil, subscription)
}

func (b *SmartViewBridge) handleDeleteSubscription(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error) {
	subscriptionID, err := stringArg(args, "subscriptionId")
	if err != nil {
		return nil, err
	}
	return b.callEndpoint(ctx, http.MethodDelete, subscriptionsPath+"/"+url.PathEscape(subscriptionID), nil, nil)
}

func (b *SmartViewBridge) handleGetSubscriptionData(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error) {
	subscriptionID, err := stringArg(args, "subscriptionId")
	if err != nil {
		return nil, err
	}
	query := queryParams(args, "ibxs", "messageTypes", "streamIds", "offset", "limit")
	return b.callEndpoint(ctx, http.MethodGet, subscriptionsPath+"/"+url.PathEscape(subscriptionID)+"/data", query, nil)
}

// ============================================================================
// Tool handlers - Hierarchy
// ============================================================================

func (b *SmartViewBridge) handleGetLocationHierarchy(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error) {
	query := queryParams(args, "accountNo", "ibx", "assetId")
	return b.callEndpoint(ctx, http.MethodGet, "/smartview/v1/hierarchy/location", query, nil)
}

func (b *SmartViewBridge) handleGetPowerHierarchy(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error) {
	query := queryParams(args, "accountNo", "ibx", "assetId")
	return b.callEndpoint(ctx, http.MethodGet, "/smartview/v1/hierarchy/power", query, nil)
}

// ============================================================================
// Tool handlers - Assets
// ============================================================================

func (b *SmartViewBridge) handleListAssets(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error) {
	query := queryParams(args, "accountNo", "ibx", "cage", "classification", "category", "template")
	return b.callEndpoint(ctx, http.MethodGet, "/smartview/v1/asset/list", query, nil)
}

func (b *SmartViewBridge) handleGetAssetDetails(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error) {
	body, err := objectArg(args, "body")
	if err != nil {
		return nil, err
	}
	return b.callEndpoint(ctx, http.MethodPost, "/smartview/v1/asset/details", nil, body)
}

func (b *SmartViewBridge) handleGetAffectedAssets(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error) {
	query := queryParams(args, "accountNo", "ibx", "assetId", "classification")
	return b.callEndpoint(ctx, http.MethodGet, "/smartview/v1/asset/tagpoint/affected-assets", query, nil)
}

func (b *SmartViewBridge) handleSearchAssets(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error) {
	query := queryParams(args, "accountNo", "ibx", "searchPattern", "classification")
	return b.callEndpoint(ctx, http.MethodGet, "/smartview/v1/asset/search", query, nil)
}

// ============================================================================
// Tool handlers - Power
// ============================================================================

func (b *SmartViewBridge) handleGetCurrentPower(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error) {
	query := queryParams(args, "accountNo", "ibx", "levelType", "levelValue")
	return b.callEndpoint(ctx, http.MethodGet, "/dcim/v1/power/current", query, nil)
}

func (b *SmartViewBridge) handleGetTrendingPower(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error) {
	query := queryParams(args, "accountNo", "ibx", "levelType", "levelValue", "fromDate", "toDate", "interval")
	return b.callEndpoint(ctx, http.MethodGet, "/dcim/v1/power/trending", query, nil)
}

// ============================================================================
// Tool handlers - Alerts
// ============================================================================

func (b *SmartViewBridge) handleGetSystemAlerts(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error) {
	query := queryParams(args, "accountNo", "ibx", "severity", "status", "fromDate", "toDate", "offset", "limit")
	return b.callEndpoint(ctx, http.MethodGet, "/dcim/v1/system-alert", query, nil)
}

func (b *SmartViewBridge) handleSearchSystemAlerts(ctx context.Context, args map[string]interface{}) (*protocol.CallToolResult, error) {
	body, err := objectArg(args, "body")
	if err != nil {
		return nil, err
	}
	return b.callEndpoint(ctx, http.MethodPost, "/dcim/v1/system-alert/search", nil, body)
}
