// SPDX-FileCopyrightText: 2026 Murphy Proxy Contributors
// SPDX-License-Identifier: Apache-2.0

package wire

// MessageBuilder is a fluent, schema-driven wrapper over Encoder that
// always starts with SEQUENCE_NO/REQUEST_TYPE (every message in spec
// §6 does) and always ends with MESSAGE_END, avoiding the repeated
// tag/type/value boilerplate design note 9 calls out in the original
// mrp_msg_create/mrp_msg_append call chains.
type MessageBuilder struct {
	enc *Encoder
}

// NewMessage starts a message with the mandatory SEQUENCE_NO and
// REQUEST_TYPE fields every wire message leads with.
func NewMessage(seqno uint32, reqType RequestType) *MessageBuilder {
	enc := NewEncoder()
	enc.U32(TagSequenceNo, seqno)
	enc.U16(TagRequestType, uint16(reqType))
	return &MessageBuilder{enc: enc}
}

// Status appends REQUEST_STATUS, used only by reply messages.
func (m *MessageBuilder) Status(code int16) *MessageBuilder {
	m.enc.S16(TagRequestStatus, code)
	return m
}

// ResourceSetID appends RESOURCE_SET_ID.
func (m *MessageBuilder) ResourceSetID(id uint32) *MessageBuilder {
	m.enc.U32(TagResourceSetID, id)
	return m
}

// ClassName appends CLASS_NAME.
func (m *MessageBuilder) ClassName(name string) *MessageBuilder {
	m.enc.String(TagClassName, name)
	return m
}

// ClassNames appends CLASS_NAME as an array, used by the classes query
// reply.
func (m *MessageBuilder) ClassNames(names []string) *MessageBuilder {
	m.enc.ArrayOfString(TagClassName, names)
	return m
}

// ZoneName appends ZONE_NAME.
func (m *MessageBuilder) ZoneName(name string) *MessageBuilder {
	m.enc.String(TagZoneName, name)
	return m
}

// ResourceFlags appends RESOURCE_FLAGS.
func (m *MessageBuilder) ResourceFlags(flags uint32) *MessageBuilder {
	m.enc.U32(TagResourceFlags, flags)
	return m
}

// ResourcePriority appends RESOURCE_PRIORITY.
func (m *MessageBuilder) ResourcePriority(priority uint32) *MessageBuilder {
	m.enc.U32(TagResourcePriority, priority)
	return m
}

// ResourceName appends RESOURCE_NAME, delimiting a per-resource
// section inside a Create request.
func (m *MessageBuilder) ResourceName(name string) *MessageBuilder {
	m.enc.String(TagResourceName, name)
	return m
}

// AttributeString appends an ATTRIBUTE_NAME/ATTRIBUTE_VALUE pair with
// a string value.
func (m *MessageBuilder) AttributeString(name, value string) *MessageBuilder {
	m.enc.String(TagAttributeName, name)
	m.enc.String(TagAttributeValue, value)
	return m
}

// AttributeS32 appends an ATTRIBUTE_NAME/ATTRIBUTE_VALUE pair with a
// signed 32-bit value.
func (m *MessageBuilder) AttributeS32(name string, value int32) *MessageBuilder {
	m.enc.String(TagAttributeName, name)
	m.enc.S32(TagAttributeValue, value)
	return m
}

// AttributeU32 appends an ATTRIBUTE_NAME/ATTRIBUTE_VALUE pair with an
// unsigned 32-bit value.
func (m *MessageBuilder) AttributeU32(name string, value uint32) *MessageBuilder {
	m.enc.String(TagAttributeName, name)
	m.enc.U32(TagAttributeValue, value)
	return m
}

// AttributeDouble appends an ATTRIBUTE_NAME/ATTRIBUTE_VALUE pair with
// a double value.
func (m *MessageBuilder) AttributeDouble(name string, value float64) *MessageBuilder {
	m.enc.String(TagAttributeName, name)
	m.enc.Double(TagAttributeValue, value)
	return m
}

// SectionEnd appends SECTION_END, terminating a per-resource section
// within a Create request.
func (m *MessageBuilder) SectionEnd() *MessageBuilder {
	m.enc.U8(TagSectionEnd, 0)
	return m
}

// ResourceState appends RESOURCE_STATE, used only by event messages.
func (m *MessageBuilder) ResourceState(state ResourceState) *MessageBuilder {
	m.enc.U16(TagResourceState, uint16(state))
	return m
}

// ResourceGrant appends RESOURCE_GRANT.
func (m *MessageBuilder) ResourceGrant(mask uint32) *MessageBuilder {
	m.enc.U32(TagResourceGrant, mask)
	return m
}

// ResourceAdvice appends RESOURCE_ADVICE.
func (m *MessageBuilder) ResourceAdvice(mask uint32) *MessageBuilder {
	m.enc.U32(TagResourceAdvice, mask)
	return m
}

// ResourceID appends RESOURCE_ID, used inside a resources-event
// per-resource section.
func (m *MessageBuilder) ResourceID(id uint32) *MessageBuilder {
	m.enc.U32(TagResourceID, id)
	return m
}

// End appends MESSAGE_END and returns the encoded bytes.
func (m *MessageBuilder) End() []byte {
	m.enc.End()
	return m.enc.Bytes()
}
