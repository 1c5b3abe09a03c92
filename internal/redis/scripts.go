package redis

import goredis "github.com/redis/go-redis/v9"

// Lua scripts for atomic conversation state transitions. KEYS[1] is the
// conversation hash (fields: state, generation), KEYS[2] the buffer list.

// appendAndBumpScript pushes one encoded message onto the buffer, bumps the
// generation counter, and moves an idle conversation to pending. A sending
// conversation keeps its state; the finishing send returns it to pending.
// Any idle-eviction TTL is lifted while the conversation is live again.
// ARGV: [1]=encoded message
var appendAndBumpScript = goredis.NewScript(`
local gen = redis.call('HINCRBY', KEYS[1], 'generation', 1)
redis.call('RPUSH', KEYS[2], ARGV[1])
local state = redis.call('HGET', KEYS[1], 'state')
if state ~= 'sending' then
  redis.call('HSET', KEYS[1], 'state', 'pending')
end
redis.call('PERSIST', KEYS[1])
redis.call('PERSIST', KEYS[2])
return gen
`)

// tryBeginSendScript is the single gate into the sending state. It refuses
// when a send is already in flight, when the caller's generation is stale,
// or when the buffer is empty; otherwise it drains the buffer and flips the
// state in one step. Returns the buffered messages oldest first, or false.
// ARGV: [1]=expected generation
var tryBeginSendScript = goredis.NewScript(`
local state = redis.call('HGET', KEYS[1], 'state')
if state == 'sending' then
  return false
end
local gen = tonumber(redis.call('HGET', KEYS[1], 'generation')) or 0
if gen ~= tonumber(ARGV[1]) then
  return false
end
local msgs = redis.call('LRANGE', KEYS[2], 0, -1)
if #msgs == 0 then
  return false
end
redis.call('DEL', KEYS[2])
redis.call('HSET', KEYS[1], 'state', 'sending')
return msgs
`)

// completeSendScript leaves the sending state. If messages arrived during
// the send the conversation stays pending for their already-armed timer;
// otherwise it goes idle and the eviction TTL starts counting.
// ARGV: [1]=idle TTL in milliseconds (0 disables expiry)
var completeSendScript = goredis.NewScript(`
if redis.call('LLEN', KEYS[2]) > 0 then
  redis.call('HSET', KEYS[1], 'state', 'pending')
  return 1
end
redis.call('HSET', KEYS[1], 'state', 'idle')
if tonumber(ARGV[1]) > 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return 0
`)
