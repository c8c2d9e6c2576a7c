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
	"github.com/teradata-labs/smartview-mcp/pkg/mcp/protocol"
)

// buildToolHandlers builds the mapping from tool name to handler.
// Called once during construction; the result is cached on the struct.
func (b *SmartViewBridge) buildToolHandlers() map[string]toolHandler {
	return map[string]toolHandler{
		// Environment
		"get_current_environment":      b.handleGetCurrentEnvironment,
		"get_trending_environment":     b.handleGetTrendingEnvironment,
		"get_environment_sensors":      b.handleGetEnvironmentSensors,
		"get_environment_sensor_by_id": b.handleGetEnvironmentSensorByID,

		// Streaming subscriptions
		"get_all_subscriptions":  b.handleGetAllSubscriptions,
		"get_subscription_by_id": b.handleGetSubscriptionByID,
		"create_subscription":    b.handleCreateSubscription,
		"update_subscription":    b.handleUpdateSubscription,
		"delete_subscription":    b.handleDeleteSubscription,
		"get_subscription_data":  b.handleGetSubscriptionData,

		// Hierarchy
		"get_location_hierarchy": b.handleGetLocationHierarchy,
		"get_power_hierarchy":    b.handleGetPowerHierarchy,

		// Assets
		"list_assets":         b.handleListAssets,
		"get_asset_details":   b.handleGetAssetDetails,
		"get_affected_assets": b.handleGetAffectedAssets,
		"search_assets":       b.handleSearchAssets,

		// Power
		"get_current_power":  b.handleGetCurrentPower,
		"get_trending_power": b.handleGetTrendingPower,

		// Alerts
		"get_system_alerts":    b.handleGetSystemAlerts,
		"search_system_alerts": b.handleSearchSystemAlerts,
	}
}

// ============================================================================
// Tool annotation helpers
// ============================================================================

// boolP returns a pointer to a bool value. Used for optional annotation fields.
func boolP(b bool) *bool { return &b }

// readOnlyAnnotation marks tools that only read data.
// readOnlyHint=true, destructiveHint=false, idempotentHint=true.
func readOnlyAnnotation() *protocol.ToolAnnotations {
	return &protocol.ToolAnnotations{
		ReadOnlyHint:    boolP(true),
		DestructiveHint: boolP(false),
		IdempotentHint:  boolP(true),
	}
}

// destructiveAnnotation marks tools that delete data.
// destructiveHint=true, readOnlyHint=false.
func destructiveAnnotation() *protocol.ToolAnnotations {
	return &protocol.ToolAnnotations{
		ReadOnlyHint:    boolP(false),
		DestructiveHint: boolP(true),
	}
}

// mutatingAnnotation marks tools that create or update data.
// readOnlyHint=false, destructiveHint=false.
func mutatingAnnotation() *protocol.ToolAnnotations {
	return &protocol.ToolAnnotations{
		ReadOnlyHint:    boolP(false),
		DestructiveHint: boolP(false),
	}
}

// ============================================================================
// Tool definitions
// ============================================================================

func buildToolDefinitions() []protocol.Tool {
	tool := func(name, desc string, schema map[string]interface{}, ann *protocol.ToolAnnotations) protocol.Tool {
		return protocol.Tool{
			Name:        name,
			Description: desc,
			InputSchema: schema,
			Annotations: ann,
		}
	}

	ro := readOnlyAnnotation()
	del := destructiveAnnotation()
	mut := mutatingAnnotation()

	// Shared parameter definitions. Nearly every endpoint scopes its
	// query by customer account and IBX data center.
	accountNo := reqProp("accountNo", "string", "Equinix customer account number")
	ibx := reqProp("ibx", "string", "IBX data center identifier (e.g. SV5, DC11)")

	return []protocol.Tool{
		// Environment
		tool("get_current_environment",
			"Get current environmental readings (temperature, humidity) for an IBX data center at a given hierarchy level.",
			objectSchema(
				accountNo,
				ibx,
				reqProp("levelType", "string", "Hierarchy level to read (e.g. ibx, zone, cage)"),
				prop("levelValue", "string", "Identifier of the zone or cage when levelType is narrower than ibx"),
			), ro),
		tool("get_trending_environment",
			"Get historical environmental trend data (temperature, humidity) for an IBX data center over a time window.",
			objectSchema(
				accountNo,
				ibx,
				reqProp("levelType", "string", "Hierarchy level to read (e.g. ibx, zone, cage)"),
				prop("levelValue", "string", "Identifier of the zone or cage when levelType is narrower than ibx"),
				prop("fromDate", "string", "Start of the reporting window (ISO 8601)"),
				prop("toDate", "string", "End of the reporting window (ISO 8601)"),
				intProp("interval", "Sampling interval between trend data points"),
			), ro),
		tool("get_environment_sensors",
			"List environmental sensors in an IBX data center with pagination.",
			objectSchema(
				accountNo,
				ibx,
				intProp("offset", "Number of sensors to skip for pagination"),
				intProp("limit", "Maximum number of sensors to return"),
				prop("sort", "string", "Sort order for the sensor list"),
			), ro),
		tool("get_environment_sensor_by_id",
			"Get detailed readings from a single environmental sensor.",
			objectSchema(
				accountNo,
				ibx,
				reqProp("sensorId", "string", "Sensor identifier"),
			), ro),

		// Streaming subscriptions
		tool("get_all_subscriptions",
			"List all SmartView streaming subscriptions for the authenticated account.",
			objectSchema(), ro),
		tool("get_subscription_by_id",
			"Get a SmartView streaming subscription by its ID.",
			objectSchema(
				reqProp("subscriptionId", "string", "Streaming subscription identifier"),
			), ro),
		tool("create_subscription",
			"Create a SmartView streaming subscription. The subscription object defines the channel, message types, and IBXs to stream.",
			objectSchema(
				reqProp("subscription", "object", "Subscription definition payload"),
			), mut),
		tool("update_subscription",
			"Replace an existing SmartView streaming subscription with a new definition.",
			objectSchema(
				reqProp("subscriptionId", "string", "Streaming subscription identifier"),
				reqProp("subscription", "object", "Replacement subscription definition payload"),
			), mut),
		tool("delete_subscription",
			"Delete a SmartView streaming subscription. Streaming for the subscription stops permanently.",
			objectSchema(
				reqProp("subscriptionId", "string", "Streaming subscription identifier"),
			), del),
		tool("get_subscription_data",
			"Fetch buffered messages from a streaming subscription, optionally filtered by IBX, message type, or stream.",
			objectSchema(
				reqProp("subscriptionId", "string", "Streaming subscription identifier"),
				arrayProp("ibxs", "IBX identifiers to filter messages by"),
				arrayProp("messageTypes", "Message types to include (e.g. alert, power, environment)"),
				arrayProp("streamIds", "Stream identifiers to filter messages by"),
				intProp("offset", "Number of messages to skip for pagination"),
				intProp("limit", "Maximum number of messages to return"),
			), ro),

		// Hierarchy
		tool("get_location_hierarchy",
			"Get the physical location hierarchy (IBX, zones, cages, cabinets) for an IBX data center or a single asset.",
			objectSchema(
				accountNo,
				ibx,
				prop("assetId", "string", "Scope the hierarchy to one asset (optional)"),
			), ro),
		tool("get_power_hierarchy",
			"Get the electrical distribution hierarchy for an IBX data center or a single asset.",
			objectSchema(
				accountNo,
				ibx,
				prop("assetId", "string", "Scope the hierarchy to one asset (optional)"),
			), ro),

		// Assets
		tool("list_assets",
			"List infrastructure assets in a cage, filtered by classification (e.g. ELECTRICAL, MECHANICAL).",
			objectSchema(
				accountNo,
				ibx,
				reqProp("cage", "string", "Cage identifier"),
				reqProp("classification", "string", "Asset classification (e.g. ELECTRICAL, MECHANICAL)"),
				prop("category", "string", "Asset category filter (optional)"),
				prop("template", "string", "Asset template filter (optional)"),
			), ro),
		tool("get_asset_details",
			"Get detailed information for specific assets. The request body selects the assets and the detail fields to return.",
			objectSchema(
				reqProp("body", "object", "Asset details request payload"),
			), ro),
		tool("get_affected_assets",
			"List customer assets affected by an infrastructure asset, for impact analysis during incidents or maintenance.",
			objectSchema(
				accountNo,
				ibx,
				reqProp("assetId", "string", "Infrastructure asset identifier"),
				reqProp("classification", "string", "Asset classification (e.g. ELECTRICAL, MECHANICAL)"),
			), ro),
		tool("search_assets",
			"Search assets in an IBX data center by name pattern.",
			objectSchema(
				accountNo,
				ibx,
				reqProp("searchPattern", "string", "Name pattern to search for"),
				reqProp("classification", "string", "Asset classification (e.g. ELECTRICAL, MECHANICAL)"),
			), ro),

		// Power
		tool("get_current_power",
			"Get current power draw for an IBX data center at a given hierarchy level.",
			objectSchema(
				accountNo,
				ibx,
				reqProp("levelType", "string", "Hierarchy level to read (e.g. ibx, cage, circuit)"),
				prop("levelValue", "string", "Identifier of the cage or circuit when levelType is narrower than ibx"),
			), ro),
		tool("get_trending_power",
			"Get historical power consumption trend data for an IBX data center over a time window.",
			objectSchema(
				accountNo,
				ibx,
				reqProp("levelType", "string", "Hierarchy level to read (e.g. ibx, cage, circuit)"),
				prop("levelValue", "string", "Identifier of the cage or circuit when levelType is narrower than ibx"),
				prop("fromDate", "string", "Start of the reporting window (ISO 8601)"),
				prop("toDate", "string", "End of the reporting window (ISO 8601)"),
				intProp("interval", "Sampling interval between trend data points"),
			), ro),

		// Alerts
		tool("get_system_alerts",
			"List system alerts (environmental and power events), optionally filtered by IBX, severity, status, or time window.",
			objectSchema(
				accountNo,
				prop("ibx", "string", "IBX data center identifier (optional, all IBXs when omitted)"),
				prop("severity", "string", "Alert severity filter"),
				prop("status", "string", "Alert status filter"),
				prop("fromDate", "string", "Start of the reporting window (ISO 8601)"),
				prop("toDate", "string", "End of the reporting window (ISO 8601)"),
				intProp("offset", "Number of alerts to skip for pagination"),
				intProp("limit", "Maximum number of alerts to return"),
			), ro),
		tool("search_system_alerts",
			"Search system alerts with a structured query payload for criteria beyond the basic filters.",
			objectSchema(
				reqProp("body", "object", "Alert search request payload"),
			), ro),
	}
}

// ============================================================================
// Schema helpers
// ============================================================================

type schemaProperty struct {
	name     string
	typ      string
	desc     string
	items    string // item type for arrays, empty otherwise
	required bool
}

func prop(name, typ, desc string) schemaProperty {
	return schemaProperty{name: name, typ: typ, desc: desc}
}

func reqProp(name, typ, desc string) schemaProperty {
	return schemaProperty{name: name, typ: typ, desc: desc, required: true}
}

func intProp(name, desc string) schemaProperty {
	return schemaProperty{name: name, typ: "integer", desc: desc}
}

func arrayProp(name, desc string) schemaProperty {
	return schemaProperty{name: name, typ: "array", desc: desc, items: "string"}
}

func objectSchema(props ...schemaProperty) map[string]interface{} {
	schema := map[string]interface{}{
		"type": "object",
	}

	if len(props) > 0 {
		properties := make(map[string]interface{})
		var required []string

		for _, p := range props {
			property := map[string]interface{}{
				"type":        p.typ,
				"description": p.desc,
			}
			if p.items != "" {
				property["items"] = map[string]interface{}{"type": p.items}
			}
			properties[p.name] = property
			if p.required {
				required = append(required, p.name)
			}
		}

		schema["properties"] = properties
		if len(required) > 0 {
			schema["required"] = required
		}
	}

	return schema
}
