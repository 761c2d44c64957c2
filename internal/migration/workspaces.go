package migration

import (
	"sort"

	"go.mongodb.org/mongo-driver/bson"
)

// CollectionWorkspaces is the workspace aggregate collection.
const CollectionWorkspaces = "workspaces"

// WorkspacesCurrentVersion is the version stamped on newly written
// workspace documents.
const WorkspacesCurrentVersion = 3

const backfillSource = "exo.migration.backfill"

// Default returns the registry for every known collection.
func Default() *Registry {
	r := NewRegistry()
	r.SetCurrent(CollectionWorkspaces, WorkspacesCurrentVersion)
	r.Register(CollectionWorkspaces, 1, workspaceUnitsAsList)
	r.Register(CollectionWorkspaces, 2, workspaceLedgerBackfill)
	return r
}

// workspaceUnitsAsList migrates v1 -> v2. Version 1 stored each
// platform's units as an object keyed by the unit's id suffix (under
// the old name "services"); version 2 stores an ordered list. Order is
// by creation time, ties broken by id so the mapping is deterministic.
func workspaceUnitsAsList(doc bson.M) bson.M {
	out := cloneDoc(doc)
	out["_version"] = int32(2)

	platforms, ok := asSlice(out["platforms"])
	if !ok {
		return out
	}

	migrated := make(bson.A, 0, len(platforms))
	for _, raw := range platforms {
		platform, ok := asDoc(raw)
		if !ok {
			migrated = append(migrated, raw)
			continue
		}
		platform = cloneDoc(platform)

		keyed, ok := asDoc(platform["services"])
		if ok {
			units := make([]bson.M, 0, len(keyed))
			for _, v := range keyed {
				if unit, ok := asDoc(v); ok {
					units = append(units, unit)
				}
			}
			sort.Slice(units, func(i, j int) bool {
				ci, cj := asInt64(units[i]["createdAt"]), asInt64(units[j]["createdAt"])
				if ci != cj {
					return ci < cj
				}
				si, _ := units[i]["id"].(string)
				sj, _ := units[j]["id"].(string)
				return si < sj
			})
			list := make(bson.A, len(units))
			for i, u := range units {
				list[i] = u
			}
			platform["units"] = list
			delete(platform, "services")
		}
		migrated = append(migrated, platform)
	}
	out["platforms"] = migrated
	return out
}

// workspaceLedgerBackfill migrates v2 -> v3. Version 2 deployments
// stored status, startedAt and finishedAt as plain fields; version 3
// derives them from the ledger. The stored fields are converted into
// synthetic ledger entries and dropped. The backfill is a pure
// function of the stored fields, so replaying it after a lost
// write-back yields the same document.
func workspaceLedgerBackfill(doc bson.M) bson.M {
	out := cloneDoc(doc)
	out["_version"] = int32(3)

	platforms, ok := asSlice(out["platforms"])
	if !ok {
		return out
	}

	migratedPlatforms := make(bson.A, 0, len(platforms))
	for _, rawPlatform := range platforms {
		platform, ok := asDoc(rawPlatform)
		if !ok {
			migratedPlatforms = append(migratedPlatforms, rawPlatform)
			continue
		}
		platform = cloneDoc(platform)

		units, ok := asSlice(platform["units"])
		if ok {
			migratedUnits := make(bson.A, 0, len(units))
			for _, rawUnit := range units {
				unit, ok := asDoc(rawUnit)
				if !ok {
					migratedUnits = append(migratedUnits, rawUnit)
					continue
				}
				unit = cloneDoc(unit)

				if deployments, ok := asSlice(unit["deployments"]); ok {
					migratedDeployments := make(bson.A, 0, len(deployments))
					for _, rawDep := range deployments {
						if dep, ok := asDoc(rawDep); ok {
							migratedDeployments = append(migratedDeployments, backfillDeploymentLedger(dep))
						} else {
							migratedDeployments = append(migratedDeployments, rawDep)
						}
					}
					unit["deployments"] = migratedDeployments
				}
				for _, key := range []string{"latestDeployment", "activeDeployment"} {
					if dep, ok := asDoc(unit[key]); ok {
						unit[key] = backfillDeploymentLedger(dep)
					}
				}
				migratedUnits = append(migratedUnits, unit)
			}
			platform["units"] = migratedUnits
		}
		migratedPlatforms = append(migratedPlatforms, platform)
	}
	out["platforms"] = migratedPlatforms
	return out
}

func backfillDeploymentLedger(dep bson.M) bson.M {
	out := cloneDoc(dep)

	if _, has := out["ledger"]; has {
		// Already ledger-shaped; just drop the stale stored fields.
		delete(out, "status")
		delete(out, "startedAt")
		delete(out, "finishedAt")
		return out
	}

	status, _ := out["status"].(string)
	startedAt := asInt64(out["startedAt"])
	finishedAt := asInt64(out["finishedAt"])

	ledger := bson.A{}
	if startedAt != 0 {
		ledger = append(ledger, bson.M{
			"status":    "queued",
			"timestamp": startedAt,
			"source":    backfillSource,
		})
	}
	if status != "" && status != "queued" {
		ts := finishedAt
		if ts == 0 {
			ts = startedAt
		}
		ledger = append(ledger, bson.M{
			"status":    status,
			"timestamp": ts,
			"source":    backfillSource,
		})
	}

	out["ledger"] = ledger
	delete(out, "status")
	delete(out, "startedAt")
	delete(out, "finishedAt")
	return out
}
