// internal/websocket/utils.go
package websocket

import "encoding/json"

// mapToStruct re-decodes a loosely typed message payload into target.
func mapToStruct(data interface{}, target interface{}) error {
	if data == nil {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}

// MapToStruct is mapToStruct for handlers living outside this package.
func MapToStruct(data interface{}, target interface{}) error {
	return mapToStruct(data, target)
}
