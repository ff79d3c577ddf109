package app

import "sort"

// RoomDirectory indexes connection ids by room. It is not safe for concurrent
// use on its own; SessionRegistry guards it with its lock.
type RoomDirectory struct {
	rooms map[string]map[string]struct{}
}

// NewRoomDirectory create an empty RoomDirectory
func NewRoomDirectory() *RoomDirectory {
	return &RoomDirectory{rooms: make(map[string]map[string]struct{})}
}

// Add put connectionID in roomID, adding twice is a no-op
func (d *RoomDirectory) Add(roomID, connectionID string) {
	members, ok := d.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		d.rooms[roomID] = members
	}
	members[connectionID] = struct{}{}
}

// Remove take connectionID out of roomID and drop the room once empty
func (d *RoomDirectory) Remove(roomID, connectionID string) {
	members, ok := d.rooms[roomID]
	if !ok {
		return
	}
	delete(members, connectionID)
	if len(members) == 0 {
		delete(d.rooms, roomID)
	}
}

// MembersOf sorted connection ids of roomID, empty for unknown rooms
func (d *RoomDirectory) MembersOf(roomID string) []string {
	members := d.rooms[roomID]
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Contains report whether connectionID is in roomID
func (d *RoomDirectory) Contains(roomID, connectionID string) bool {
	_, ok := d.rooms[roomID][connectionID]
	return ok
}

// RoomCount number of non empty rooms
func (d *RoomDirectory) RoomCount() int {
	return len(d.rooms)
}
