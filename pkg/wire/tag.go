// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

// Package wire implements the length-tagged binary message protocol
// spoken between the resource proxy and the murphy master daemon: a
// sequence of tagged fields terminated by a MESSAGE_END marker (spec
// §4.C, §6). The codec is agnostic to message semantics; the field
// tag/type table below and the builder/accessor helpers are what
// internal/proxy composes into the concrete Create/Acquire/Event
// shapes.
//
// Grounded field-order details are cross-checked against
// original_source/src/resource-proxy/socket.c's RESPROTO_* constants
// and mrp_msg_create/mrp_msg_append call sites.
package wire

// Tag identifies one field within a message.
type Tag uint16

const (
	TagSequenceNo Tag = iota + 1
	TagRequestType
	TagRequestStatus
	TagClassName
	TagZoneName
	TagResourceName
	TagResourceFlags
	TagResourceSetID
	TagResourceState
	TagResourceGrant
	TagResourceAdvice
	TagResourcePriority
	TagResourceID
	TagAttributeName
	TagAttributeValue
	TagSectionEnd
	TagMessageEnd
)

// String names a Tag for diagnostics.
func (t Tag) String() string {
	switch t {
	case TagSequenceNo:
		return "SEQUENCE_NO"
	case TagRequestType:
		return "REQUEST_TYPE"
	case TagRequestStatus:
		return "REQUEST_STATUS"
	case TagClassName:
		return "CLASS_NAME"
	case TagZoneName:
		return "ZONE_NAME"
	case TagResourceName:
		return "RESOURCE_NAME"
	case TagResourceFlags:
		return "RESOURCE_FLAGS"
	case TagResourceSetID:
		return "RESOURCE_SET_ID"
	case TagResourceState:
		return "RESOURCE_STATE"
	case TagResourceGrant:
		return "RESOURCE_GRANT"
	case TagResourceAdvice:
		return "RESOURCE_ADVICE"
	case TagResourcePriority:
		return "RESOURCE_PRIORITY"
	case TagResourceID:
		return "RESOURCE_ID"
	case TagAttributeName:
		return "ATTRIBUTE_NAME"
	case TagAttributeValue:
		return "ATTRIBUTE_VALUE"
	case TagSectionEnd:
		return "SECTION_END"
	case TagMessageEnd:
		return "MESSAGE_END"
	default:
		return "UNKNOWN"
	}
}

// FieldType identifies a field's payload encoding.
type FieldType uint16

const (
	TypeU8 FieldType = iota + 1
	TypeU16
	TypeU32
	TypeS16
	TypeS32
	TypeDouble
	TypeString
	TypeBool
	TypeArrayOfString
	TypeEnd // MESSAGE_END's marker payload, carries no value
)

// RequestType is the REQUEST_TYPE field's payload (spec §6 table).
type RequestType uint16

const (
	ReqQueryClasses RequestType = iota + 1
	ReqQueryResources
	ReqCreateResourceSet
	ReqDestroyResourceSet
	ReqAcquireResourceSet
	ReqReleaseResourceSet
	ReqResourcesEvent
)

// String names a RequestType for diagnostics.
func (r RequestType) String() string {
	switch r {
	case ReqQueryClasses:
		return "QUERY_CLASSES"
	case ReqQueryResources:
		return "QUERY_RESOURCES"
	case ReqCreateResourceSet:
		return "CREATE_RESOURCE_SET"
	case ReqDestroyResourceSet:
		return "DESTROY_RESOURCE_SET"
	case ReqAcquireResourceSet:
		return "ACQUIRE_RESOURCE_SET"
	case ReqReleaseResourceSet:
		return "RELEASE_RESOURCE_SET"
	case ReqResourcesEvent:
		return "RESOURCES_EVENT"
	default:
		return "UNKNOWN"
	}
}

// ResourceFlag bits for the per-resource RESOURCE_FLAGS field.
type ResourceFlag uint32

const (
	ResourceFlagShared    ResourceFlag = 1 << 0
	ResourceFlagMandatory ResourceFlag = 1 << 1
)

// ResourceSetFlag bits for the per-set RESOURCE_FLAGS field on a
// Create request.
type ResourceSetFlag uint32

const (
	ResourceSetFlagAutoRelease ResourceSetFlag = 1 << 0
	ResourceSetFlagDontWait    ResourceSetFlag = 1 << 1
)

// ResourceState is the RESOURCE_STATE field's payload.
type ResourceState uint16

const (
	StateNoRequest ResourceState = iota
	StateAcquire
	StateRelease
)
