// Copyright 2023 The acquirecloud Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package logging is the leveled logger used by the lrukit packages and lructl.

The components get their loggers with NewLogger, named after the component, like
"kvcache.CachedStorage". By default the messages go to stderr as

	[15:04:05.000000] INFO	kvcache.CachedStorage: invalidated 3 records by pattern="user:*"

The level is global, lructl sets it from the logLevel config value via ParseLevel and
SetLevel. SetConfig replaces the logger implementation for the whole process.
*/
package logging
