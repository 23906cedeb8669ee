package export

import (
	"github.com/uhhhh15/starmark/internal/host"
	"github.com/uhhhh15/starmark/internal/store"
)

// Snapshot gathers everything the serializers read from the live
// conversation: context, metadata, message sequence and favorites.
func Snapshot(h host.Host, st *store.Store) (Source, error) {
	ctx, err := h.Context()
	if err != nil {
		return Source{}, err
	}
	records, err := st.Collection()
	if err != nil {
		return Source{}, err
	}
	meta, err := h.Meta()
	if err != nil {
		return Source{}, err
	}
	return Source{
		Subject:        ctx.CharacterName,
		UserName:       ctx.UserName,
		CharacterName:  ctx.CharacterName,
		ConversationID: ctx.ConversationID,
		Meta:           meta,
		Messages:       h.Messages(),
		Records:        records,
	}, nil
}
